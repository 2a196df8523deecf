package rag

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/cli"
)

// newFilesCmd instantiates and returns the rag files command.
func newFilesCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Page     int
		PageSize int
		Delete   string
	}

	cmd := &cobra.Command{
		Use:   "files <instance-id>",
		Short: "List or delete the files of a retrieval index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			instanceID := args[0]

			if opts.Delete != "" {
				if err := client.DeleteRAGFile(ctx, instanceID, opts.Delete); err != nil {
					return errors.Wrap(err, "deleting file")
				}
				cli.Success("Deleted file %s\n", opts.Delete)
				return nil
			}

			list, err := client.ListRAGFiles(ctx, instanceID, opts.Page, opts.PageSize)
			if err != nil {
				return errors.Wrap(err, "listing files")
			}
			for _, file := range list.Files {
				printFile(file)
			}
			cli.Muted("%d of %d files\n", len(list.Files), list.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page")
	cmd.Flags().IntVarP(&opts.PageSize, "page-size", "p", 50, "Page size")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "Delete the given file id instead of listing")
	return cmd
}

// newUploadCmd instantiates and returns the rag upload command.
func newUploadCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <instance-id> <files...>",
		Short: "Upload documents to a retrieval index",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			instanceID := args[0]

			var uploads []api.UploadFile
			var handles []*os.File
			defer func() {
				for _, handle := range handles {
					handle.Close()
				}
			}()
			for _, path := range args[1:] {
				handle, err := os.Open(path)
				if err != nil {
					return errors.Wrapf(err, "opening %s", path)
				}
				handles = append(handles, handle)
				uploads = append(uploads, api.UploadFile{
					Name:   filepath.Base(path),
					Reader: handle,
				})
			}

			files, err := client.UploadRAGFiles(ctx, instanceID, uploads)
			if err != nil {
				return errors.Wrap(err, "uploading files")
			}
			for _, file := range files {
				printFile(file)
			}
			cli.Success("Uploaded %d files; ingestion runs in the background\n", len(files))
			cli.Muted("Follow it with: strata rag watch %s\n", instanceID)
			return nil
		},
	}
	return cmd
}

func printFile(file api.RAGInstanceFile) {
	switch file.ProcessingStatus {
	case api.FileStatusCompleted:
		cli.Success("  %s %s (%s)\n", statusGlyph(file.ProcessingStatus), file.Filename, humanize.Bytes(uint64(file.SizeBytes)))
	case api.FileStatusFailed:
		cli.Error("  %s %s: %s\n", statusGlyph(file.ProcessingStatus), file.Filename, file.ProcessingError)
	default:
		cli.Info("  %s %s (%s)\n", statusGlyph(file.ProcessingStatus), file.Filename, file.ProcessingStatus)
	}
}

func statusGlyph(status string) string {
	switch status {
	case api.FileStatusCompleted:
		return "✓"
	case api.FileStatusFailed:
		return "✗"
	case api.FileStatusProcessing:
		return "…"
	default:
		return "·"
	}
}
