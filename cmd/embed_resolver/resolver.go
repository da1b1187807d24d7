package main

import (
	"sync"

	"github.com/sirupsen/logrus"
	v1 "github.com/t2bot/embed-resolver/api/v1"
	"github.com/t2bot/embed-resolver/common/config"
	"github.com/t2bot/embed-resolver/embedding/providers"
	"github.com/t2bot/embed-resolver/embedding/u"
)

var fetcher *u.Fetcher
var fetcherLock = &sync.Mutex{}

// rebuildResolver creates a new fetcher and registry from the current config
// and swaps them in for new requests.
func rebuildResolver() error {
	newFetcher, err := u.NewFetcher(config.Get().Resolver)
	if err != nil {
		return err
	}
	registry, err := providers.NewDefaultRegistry(newFetcher)
	if err != nil {
		newFetcher.Close()
		return err
	}
	v1.SetRegistry(registry)

	fetcherLock.Lock()
	old := fetcher
	fetcher = newFetcher
	fetcherLock.Unlock()

	if old != nil {
		old.Close()
	}
	logrus.Debug("Resolver ready")
	return nil
}

func closeResolver() {
	fetcherLock.Lock()
	defer fetcherLock.Unlock()
	if fetcher != nil {
		fetcher.Close()
		fetcher = nil
	}
}
