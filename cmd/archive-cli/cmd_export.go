package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"family-archive/archive-api/internal/domain/archive"
	"family-archive/archive-api/internal/infrastructure/fetcher"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export photos as a ZIP archive",
	Long: `Export photos by id or a whole bucket. The server bundler is tried first;
when it cannot be reached the archive is assembled locally and written to --out.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("ids", "", "Comma separated photo ids, in archive order")
	exportCmd.Flags().String("bucket", "", "Export every photo of a bucket")
	exportCmd.Flags().StringP("out", "o", ".", "Directory the archive is written to")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rawIDs, _ := cmd.Flags().GetString("ids")
	bucketKey, _ := cmd.Flags().GetString("bucket")
	outDir, _ := cmd.Flags().GetString("out")

	if (rawIDs == "") == (bucketKey == "") {
		return fmt.Errorf("exactly one of --ids or --bucket is required")
	}

	rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	var ids []int64
	if bucketKey != "" {
		bucket, err := rt.views.Bucket(ctx, bucketKey)
		if err != nil {
			return fmt.Errorf("bucket %q: %w", bucketKey, err)
		}
		ids = bucket.IDs()
	} else if ids, err = parseIDs(rawIDs); err != nil {
		return err
	}

	result, err := rt.views.ExportIDs(ctx, ids)
	if err != nil {
		return err
	}

	target := filepath.Join(outDir, result.Filename)
	switch result.State {
	case archive.StateServerBundleReady:
		data, err := fetcher.New(rt.cfg.ObjectFetchTimeout, 0, rt.log).Fetch(ctx, result.DownloadURL)
		if err != nil {
			return fmt.Errorf("download bundle: %w", err)
		}
		if err := writeArchive(target, data); err != nil {
			return err
		}
	case archive.StateFallbackBundleReady:
		defer result.Handle.Release()
		_, data, err := rt.registry.Take(result.Handle.ID)
		if err != nil {
			return err
		}
		if err := writeArchive(target, data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("export finished in unexpected state %s", result.State)
	}

	fmt.Printf("Wrote %d photos to %s (%s)\n", result.PhotoCount, target, result.State)
	return nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid photo id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, archive.ErrEmptySelection
	}
	return ids, nil
}

func writeArchive(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}
