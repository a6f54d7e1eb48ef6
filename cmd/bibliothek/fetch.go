package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/PaperMC/bibliothek/catalog"
	cerrors "github.com/PaperMC/bibliothek/errors"
	parentfs "github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/fs/billy"
	"github.com/PaperMC/bibliothek/storage"
)

func newFetchCommand(c *cli) *cobra.Command {
	var (
		req       catalog.FetchRequest
		cachePath string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Resolve the downloads of a build into the local cache",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command) error {
			return runFetch(cmd, c, req, cachePath)
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Project, "project", "", "project name")
	flags.StringVar(&req.Version, "version", "", "version name")
	flags.IntVar(&req.Build, "build", 0, "build number")
	flags.StringVar(&req.Channel, "download", "", "only fetch this download key")
	flags.StringVar(&cachePath, "cachePath", "", "download cache directory (overrides storage.cache_path)")
	mustRequire(cmd, "project", "version", "build")
	return cmd
}

func runFetch(cmd *cobra.Command, c *cli, req catalog.FetchRequest, cachePath string) error {
	ctx := cmd.Context()

	e, err := setup(c.configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if cachePath == "" {
		cachePath = e.cfg.Storage.CachePath
	}
	cacheRoot, err := parentfs.GetAbs(cachePath)
	if err != nil {
		return cerrors.WrapPath(err, cerrors.CodeArtifactCopyFailed, "resolve cache path", cachePath)
	}

	sources, err := fetchSources(ctx, e)
	if err != nil {
		return err
	}

	resolver := storage.NewResolver(billy.NewOSFS(cacheRoot),
		storage.WithSources(sources...),
		storage.WithResolverLogger(e.logger))

	res, err := catalog.New(e.connector,
		catalog.WithLogger(e.logger),
		catalog.WithResolver(resolver)).Fetch(ctx, req)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(res.Paths))
	for k := range res.Paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, filepath.Join(cacheRoot, filepath.FromSlash(res.Paths[k])))
	}
	return nil
}

// fetchSources lists local storage first, then object storage.
func fetchSources(ctx context.Context, e *env) ([]storage.Source, error) {
	var sources []storage.Source
	if e.cfg.Storage.Path != "" {
		local, err := localStorage(e.cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, storage.Source{Name: "local", FS: local})
	}

	remote, err := objectStorage(ctx, e.cfg.Storage)
	if err != nil {
		return nil, err
	}
	if remote != nil {
		sources = append(sources, storage.Source{Name: e.cfg.Storage.Driver, FS: remote})
	}
	return sources, nil
}
