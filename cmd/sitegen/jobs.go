package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/db"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List and show stored generation jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent generation jobs",
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Print the stored result of a completed job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var (
	jobsDatabaseURL string
	jobsLimit       int
)

func init() {
	jobsCmd.PersistentFlags().StringVar(&jobsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	jobsListCmd.Flags().IntVarP(&jobsLimit, "limit", "n", 20, "Maximum number of jobs to list")

	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd)
	rootCmd.AddCommand(jobsCmd)
}

func connectJobs(ctx context.Context) (*db.DB, error) {
	databaseURL := jobsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	return db.Connect(ctx, databaseURL)
}

func runJobsList(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	database, err := connectJobs(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	jobs, err := database.ListRecentJobs(ctx, jobsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tBUSINESS\tSTATUS\tCALLS\tCOST\tCREATED")
	for _, job := range jobs {
		status := job.Status
		if job.FailedUnit != nil {
			status = fmt.Sprintf("%s (%s)", job.Status, *job.FailedUnit)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			job.ID, job.BusinessName, status, job.Calls, formatCents(job.CostCents),
			job.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runJobsShow(_ *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid job id: %w", err)
	}

	ctx := context.Background()
	database, err := connectJobs(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	result, err := database.GetResult(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("no completed job %s", id)
	}
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, "", result)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
