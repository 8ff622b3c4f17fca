package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"family-archive/archive-api/internal/domain/period"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List period buckets",
	Long:  `List the rolling, month and year buckets with their photo counts, or the photos of one bucket.`,
	RunE:  runBuckets,
}

func init() {
	bucketsCmd.Flags().StringP("key", "k", "", "Show the photos of one bucket")
}

func runBuckets(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	if key, _ := cmd.Flags().GetString("key"); key != "" {
		bucket, err := rt.views.Bucket(ctx, key)
		if err != nil {
			return fmt.Errorf("bucket %q: %w", key, err)
		}
		fmt.Printf("%s (%d photos)\n", bucket.Name, len(bucket.Photos))
		for _, p := range bucket.Photos {
			fmt.Printf("  %-8d %s  %s\n", p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.Filename)
		}
		return nil
	}

	nav, err := rt.views.Navigation(ctx)
	if err != nil {
		return err
	}
	printSection("Recent", nav.Rolling)
	printSection("Months", nav.Months)
	printSection("Years", nav.Years)
	return nil
}

func printSection(title string, buckets []period.Bucket) {
	fmt.Println(title + ":")
	if len(buckets) == 0 {
		fmt.Println("  (none)")
	}
	for _, b := range buckets {
		fmt.Printf("  %-12s %-24s %d\n", b.Key, b.Name, len(b.Photos))
	}
	fmt.Println()
}
