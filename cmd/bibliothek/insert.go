package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PaperMC/bibliothek/catalog"
	parentfs "github.com/PaperMC/bibliothek/fs"
)

func newInsertBuildCommand(c *cli) *cobra.Command {
	var req catalog.IngestRequest

	cmd := &cobra.Command{
		Use:   "insert-build",
		Short: "Record a build, its changelog and its artifacts",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command) error {
			return runInsertBuild(cmd, c, req)
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Project, "projectName", "", "project name, e.g. paper")
	flags.StringVar(&req.ProjectFriendlyName, "projectFriendlyName", "", "project display name, e.g. Paper")
	flags.StringVar(&req.VersionGroup, "versionGroupName", "", "version group name, e.g. 1.20")
	flags.StringVar(&req.Version, "versionName", "", "version name, e.g. 1.20.1")
	flags.IntVar(&req.BuildNumber, "buildNumber", 0, "build number")
	flags.StringVar(&req.RepositoryPath, "repositoryPath", "", "path of the source checkout")
	flags.StringVar(&req.StoragePath, "storagePath", "", "local artifact storage root (overrides storage.path)")
	flags.StringArrayVar(&req.Downloads, "download", nil, "artifact descriptor key:path:sha256[:name] (repeatable)")
	flags.StringVar(&req.Channel, "channel", "", "release channel (default or experimental)")

	mustRequire(cmd,
		"projectName", "projectFriendlyName", "versionGroupName", "versionName",
		"buildNumber", "repositoryPath", "download")
	return cmd
}

func runInsertBuild(cmd *cobra.Command, c *cli, req catalog.IngestRequest) error {
	e, err := setup(c.configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if req.StoragePath == "" {
		req.StoragePath = e.cfg.Storage.Path
	}

	ingester := catalog.New(e.connector,
		catalog.WithLogger(e.logger),
		catalog.WithVerifyChecksums(e.cfg.Storage.VerifyChecksums),
		catalog.WithStorageOpener(func(ctx context.Context) (parentfs.Filesystem, error) {
			return objectStorage(ctx, e.cfg.Storage)
		}))

	res, err := ingester.Ingest(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Inserted build %d for project %s (%s) version %s (%s): %s\n",
		res.Build.Number, res.Project.Name, res.Project.ID, res.Version.Name, res.Version.ID, res.Build.ID)
	return nil
}
