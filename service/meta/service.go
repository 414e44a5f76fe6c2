// Package meta loads YAML resources (configuration, scenarios) from any
// storage supported by afs, expanding ${env.KEY} expressions first.
package meta

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service resolves relative URLs against a base URL and decodes YAML.
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// URL resolves location against the base URL.
func (s *Service) URL(location string) string {
	if s.baseURL == "" || !url.IsRelative(location) {
		return location
	}
	return url.Join(s.baseURL, location)
}

// Download returns the env-expanded content of URL.
func (s *Service) Download(ctx context.Context, URL string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, s.URL(URL), s.options...)
	if err != nil {
		return nil, err
	}
	return []byte(ExpandEnv(string(data), nil)), nil
}

// Load decodes the YAML resource at URL into dest; dest may be a *yaml.Node.
func (s *Service) Load(ctx context.Context, URL string, dest interface{}) error {
	data, err := s.Download(ctx, URL)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	return nil
}

// New creates a meta service. Options are passed to every download, e.g. an
// embed.FS for embed:// URLs.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: baseURL, options: options}
}
