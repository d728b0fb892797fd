package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/infra/httpclient"
	"github.com/memodb-io/sitestore/internal/infra/logger"
	"github.com/memodb-io/sitestore/internal/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SITESTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Push and pull sites to and from a sitestore server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := root.PersistentFlags()
	pf.String("server", "http://localhost:8080", "server base URL")
	pf.String("token", "", "gateway bearer token")
	pf.String("principal", "", "principal to act as")
	pf.Int("chunk-size", 1<<20, "chunk size configured on the server")
	pf.String("log-level", "warn", "log level")
	_ = v.BindPFlags(pf)

	root.AddCommand(
		newPushCmd(v),
		newPullCmd(v),
		newPublishCmd(v),
		newVersionsCmd(v),
		newUploadCmd(v),
	)
	return root
}

func newClient(v *viper.Viper) (*httpclient.Client, error) {
	log, err := logger.New(v.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	c := httpclient.NewClient(v.GetString("server"), v.GetString("token"), v.GetString("principal"), log)
	c.ChunkSize = v.GetInt("chunk-size")
	return c, nil
}

func projectFlag(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("project")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--project: %w", err)
	}
	return id, nil
}

func newPushCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Save index.html, styles.css and script.js from a directory as a new version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectID, err := projectFlag(cmd)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			desc, _ := cmd.Flags().GetString("description")

			site, err := readSite(dir)
			if err != nil {
				return err
			}
			c, err := newClient(v)
			if err != nil {
				return err
			}
			res, err := c.SaveSite(cmd.Context(), projectID, site, desc)
			if err != nil {
				return fmt.Errorf("%s", httpclient.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved version %s (%d assets)\n", res.Version.ID, len(res.Assets))
			return nil
		},
	}
	cmd.Flags().String("project", "", "project id")
	cmd.Flags().String("dir", ".", "directory holding the site files")
	cmd.Flags().String("description", "", "version description")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newPullCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Write the site of a version into a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectID, err := projectFlag(cmd)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			version, _ := cmd.Flags().GetString("version")

			c, err := newClient(v)
			if err != nil {
				return err
			}
			w := httpclient.NewWorkspace(c, projectID)
			if err := w.Load(cmd.Context(), version); err != nil {
				return fmt.Errorf("%s", w.Err())
			}
			site, versionID := w.State()
			if versionID == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "project has no saved version")
				return nil
			}
			if err := writeSite(dir, site); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pulled version %s into %s\n", versionID, dir)
			return nil
		},
	}
	cmd.Flags().String("project", "", "project id")
	cmd.Flags().String("dir", ".", "target directory")
	cmd.Flags().String("version", "", "version id, defaults to the current version")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newPublishCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the current version, or unpublish with --off",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectID, err := projectFlag(cmd)
			if err != nil {
				return err
			}
			off, _ := cmd.Flags().GetBool("off")

			c, err := newClient(v)
			if err != nil {
				return err
			}
			p, err := c.PublishProject(cmd.Context(), projectID, !off)
			if err != nil {
				return fmt.Errorf("%s", httpclient.Message(err))
			}
			if p.Published && p.PublishedVersionID != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "published %s at /p/%s\n", *p.PublishedVersionID, p.URLSlug)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "unpublished")
			}
			return nil
		},
	}
	cmd.Flags().String("project", "", "project id")
	cmd.Flags().Bool("off", false, "unpublish")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newVersionsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List the versions of a project, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectID, err := projectFlag(cmd)
			if err != nil {
				return err
			}
			c, err := newClient(v)
			if err != nil {
				return err
			}
			items, err := c.GetProjectVersions(cmd.Context(), projectID)
			if err != nil {
				return fmt.Errorf("%s", httpclient.Message(err))
			}
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", it.ID, it.CreatedAt.Format("2006-01-02 15:04:05"), it.CreatedBy, it.Description)
			}
			return nil
		},
	}
	cmd.Flags().String("project", "", "project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newUploadCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a single file as an asset of an existing version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := projectFlag(cmd)
			if err != nil {
				return err
			}
			version, _ := cmd.Flags().GetString("version")
			assetType, _ := cmd.Flags().GetString("type")
			path, _ := cmd.Flags().GetString("path")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := newClient(v)
			if err != nil {
				return err
			}
			a, err := c.UploadAsset(cmd.Context(), projectID, types.AssetIn{
				Filename:  baseName(args[0]),
				VersionID: version,
				AssetType: assetType,
				Path:      path,
			}, data)
			if err != nil {
				return fmt.Errorf("%s", httpclient.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes) as %s\n", a.FullPath(), a.Size, a.ID)
			return nil
		},
	}
	cmd.Flags().String("project", "", "project id")
	cmd.Flags().String("version", "", "version id")
	cmd.Flags().String("type", "binary", "asset type (html, css, javascript, image, binary)")
	cmd.Flags().String("path", "", "public path, defaults by type")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}
