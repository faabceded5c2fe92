//go:build windows

package autostart

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

type runKeyStore struct{}

func newRunKeyStore() valueStore { return runKeyStore{} }

func (runKeyStore) open(access uint32) (registry.Key, error) {
	return registry.OpenKey(registry.CURRENT_USER, RunKeyPath, access)
}

func (s runKeyStore) get(name string) (string, error) {
	k, err := s.open(registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()
	v, _, err := k.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return "", errNotExist
	}
	return v, err
}

func (s runKeyStore) set(name, value string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, RunKeyPath, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()
	return k.SetStringValue(name, value)
}

func (s runKeyStore) remove(name string) error {
	k, err := s.open(registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return errNotExist
		}
		return err
	}
	defer k.Close()
	if err := k.DeleteValue(name); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return errNotExist
		}
		return err
	}
	return nil
}
