package config

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var Path = "embed-resolver.yaml"

var instance *MainConfig
var singletonLock = &sync.Once{}
var instanceLock = &sync.RWMutex{}

func reloadConfig() (*MainConfig, error) {
	c := NewDefaultMainConfig()

	// Write a default config if the one given doesn't exist
	info, err := os.Stat(Path)
	exists := err == nil || !os.IsNotExist(err)
	if !exists {
		fmt.Println("Generating new configuration...")
		configBytes, err := yaml.Marshal(c)
		if err != nil {
			return nil, err
		}

		err = os.WriteFile(Path, configBytes, 0644)
		if err != nil {
			return nil, err
		}
	}

	// Get new info about the possible directory after creating
	info, err = os.Stat(Path)
	if err != nil {
		return nil, err
	}

	pathsOrdered := make([]string, 0)
	if info.IsDir() {
		logrus.Info("Config is a directory - loading all files over top of each other")

		files, err := os.ReadDir(Path)
		if err != nil {
			return nil, err
		}

		for _, f := range files {
			if f.IsDir() {
				continue
			}
			pathsOrdered = append(pathsOrdered, path.Join(Path, f.Name()))
		}

		sort.Strings(pathsOrdered)
	} else {
		pathsOrdered = append(pathsOrdered, Path)
	}

	for _, p := range pathsOrdered {
		logrus.Info("Loading config file: ", p)
		if err = loadFileInto(p, &c); err != nil {
			return nil, fmt.Errorf("error loading %s: %w", p, err)
		}
	}

	return &c, nil
}

func loadFileInto(p string, c *MainConfig) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	buffer, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(buffer, c)
}

func Get() *MainConfig {
	instanceLock.RLock()
	c := instance
	instanceLock.RUnlock()
	if c != nil {
		return c
	}

	singletonLock.Do(func() {
		c, err := reloadConfig()
		if err != nil {
			logrus.Fatal(err)
		}
		replace(c)
	})

	instanceLock.RLock()
	defer instanceLock.RUnlock()
	return instance
}

func replace(c *MainConfig) {
	instanceLock.Lock()
	instance = c
	instanceLock.Unlock()
}

// SetForTesting replaces the active configuration without touching the disk.
func SetForTesting(c MainConfig) {
	replace(&c)
}
