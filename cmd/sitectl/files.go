package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/pkg/types"
)

func sitePaths(dir string) (html, css, js string) {
	return filepath.Join(dir, model.AssetTypeHTML.Config().Filename),
		filepath.Join(dir, model.AssetTypeCSS.Config().Filename),
		filepath.Join(dir, model.AssetTypeJavaScript.Config().Filename)
}

// readSite reads the three editor files from dir. Missing files read as empty.
func readSite(dir string) (types.Site, error) {
	var site types.Site
	htmlPath, cssPath, jsPath := sitePaths(dir)
	for _, f := range []struct {
		path string
		dst  *string
	}{
		{htmlPath, &site.HTML},
		{cssPath, &site.CSS},
		{jsPath, &site.JS},
	} {
		b, err := os.ReadFile(f.path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return types.Site{}, err
		}
		*f.dst = string(b)
	}
	if site.IsEmpty() {
		return types.Site{}, errors.New("no site files found in " + dir)
	}
	return site, nil
}

// writeSite writes the non-empty blobs of site into dir and removes the file
// of every empty one, so dir mirrors the version that was pulled.
func writeSite(dir string, site types.Site) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	htmlPath, cssPath, jsPath := sitePaths(dir)
	for path, body := range map[string]string{htmlPath: site.HTML, cssPath: site.CSS, jsPath: site.JS} {
		if body == "" {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			continue
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func baseName(path string) string {
	return filepath.Base(path)
}
