//go:build !windows

package autostart

type unsupportedStore struct{}

func newRunKeyStore() valueStore { return unsupportedStore{} }

func (unsupportedStore) get(string) (string, error) { return "", ErrUnsupported }
func (unsupportedStore) set(string, string) error   { return ErrUnsupported }
func (unsupportedStore) remove(string) error        { return ErrUnsupported }
