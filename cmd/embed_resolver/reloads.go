package main

import (
	"github.com/sirupsen/logrus"
	"github.com/t2bot/embed-resolver/api/webserver"
	"github.com/t2bot/embed-resolver/common/globals"
	"github.com/t2bot/embed-resolver/metrics"
)

func setupReloads() {
	reloadWebOnChan(globals.WebReloadChan)
	reloadMetricsOnChan(globals.MetricsReloadChan)
	reloadResolverOnChan(globals.ResolverReloadChan)
}

func stopReloads() {
	// send stop signal to reload fns
	globals.WebReloadChan <- false
	globals.MetricsReloadChan <- false
	globals.ResolverReloadChan <- false
}

func reloadWebOnChan(reloadChan chan bool) {
	go func() {
		defer close(reloadChan)
		for {
			shouldReload := <-reloadChan
			if shouldReload {
				webserver.Reload()
			} else {
				return // received stop
			}
		}
	}()
}

func reloadMetricsOnChan(reloadChan chan bool) {
	go func() {
		defer close(reloadChan)
		for {
			shouldReload := <-reloadChan
			if shouldReload {
				metrics.Reload()
			} else {
				return // received stop
			}
		}
	}()
}

func reloadResolverOnChan(reloadChan chan bool) {
	go func() {
		defer close(reloadChan)
		for {
			shouldReload := <-reloadChan
			if shouldReload {
				if err := rebuildResolver(); err != nil {
					logrus.Error("Error rebuilding resolver - keeping the previous one: ", err)
				}
			} else {
				return // received stop
			}
		}
	}()
}
