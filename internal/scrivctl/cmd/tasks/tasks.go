package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/scrivener/pkg/cli/genericclioptions"
	"github.com/kiosk404/scrivener/pkg/utils/json"
)

var tasksExample = heredoc.Doc(`
		# Show the most recent executions
		scrivctl tasks

		# Show the last 5 executions
		scrivctl tasks --limit=5

		# Show aggregate execution statistics
		scrivctl tasks --stats`)

// taskRow mirrors the task fields the table shows.
type taskRow struct {
	ID          string `json:"id"`
	State       string `json:"state"`
	Platform    string `json:"platform"`
	Priority    string `json:"priority"`
	SubmittedAt string `json:"submittedAt"`
	FinishedAt  string `json:"finishedAt"`
	Result      *struct {
		ExitCode  int    `json:"exitCode"`
		ErrorKind string `json:"errorKind"`
	} `json:"result"`
	Metrics *struct {
		WallTimeMs int64 `json:"wallTimeMs"`
	} `json:"metrics"`
}

type historyPayload struct {
	Data []taskRow `json:"data"`
}

type statsPayload struct {
	Queued        int                `json:"queued"`
	Running       int                `json:"running"`
	Completed     int                `json:"completed"`
	Failed        int                `json:"failed"`
	Cancelled     int                `json:"cancelled"`
	TimedOut      int                `json:"timedOut"`
	SuccessRate24 float64            `json:"successRate24h"`
	AvgWallTimeMs map[string]float64 `json:"avgWallTimeMs"`
}

// TasksOptions holds the flags of the tasks sub command.
type TasksOptions struct {
	ServerAddr string
	Limit      int
	Stats      bool

	genericclioptions.IOStreams
}

// NewTasksOptions returns an initialized TasksOptions instance.
func NewTasksOptions(ioStreams genericclioptions.IOStreams) *TasksOptions {
	return &TasksOptions{
		ServerAddr: "http://localhost:8000",
		Limit:      20,
		IOStreams:  ioStreams,
	}
}

// NewCmdTasks returns new initialized instance of the tasks sub command.
func NewCmdTasks(ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewTasksOptions(ioStreams)

	cmd := &cobra.Command{
		Use:                   "tasks",
		DisableFlagsInUseLine: true,
		Short:                 "Inspect script execution history and statistics",
		Example:               tasksExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&o.ServerAddr, "server", o.ServerAddr, "Scriptorium HTTP server address")
	cmd.Flags().IntVar(&o.Limit, "limit", o.Limit, "Number of history entries to show")
	cmd.Flags().BoolVar(&o.Stats, "stats", o.Stats, "Show aggregate statistics instead of history")

	return cmd
}

// Run executes the tasks sub command.
func (o *TasksOptions) Run(ctx context.Context) error {
	if o.Stats {
		return o.printStats(ctx)
	}
	return o.printHistory(ctx)
}

func (o *TasksOptions) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(o.ServerAddr, "/")+path, nil)
	if err != nil {
		return err
	}
	if token := os.Getenv("SCRIPTORIUM_GATEWAY_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

func (o *TasksOptions) printHistory(ctx context.Context) error {
	var payload historyPayload
	if err := o.get(ctx, fmt.Sprintf("/api/execute/history?limit=%d", o.Limit), &payload); err != nil {
		return err
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("ID", "STATE", "PLATFORM", "PRIORITY", "EXIT", "WALL", "FINISHED")
	for _, t := range payload.Data {
		exit := "-"
		if t.Result != nil {
			if t.Result.ErrorKind != "" && t.Result.ErrorKind != "nonZeroExit" {
				exit = t.Result.ErrorKind
			} else {
				exit = fmt.Sprintf("%d", t.Result.ExitCode)
			}
		}
		wall := "-"
		if t.Metrics != nil {
			wall = (time.Duration(t.Metrics.WallTimeMs) * time.Millisecond).String()
		}
		table.AddRow(shortID(t.ID), t.State, t.Platform, t.Priority, exit, wall, t.FinishedAt)
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

func (o *TasksOptions) printStats(ctx context.Context) error {
	var stats statsPayload
	if err := o.get(ctx, "/api/execute/statistics", &stats); err != nil {
		return err
	}

	table := uitable.New()
	table.AddRow("Queued:", stats.Queued)
	table.AddRow("Running:", stats.Running)
	table.AddRow("Completed:", stats.Completed)
	table.AddRow("Failed:", stats.Failed)
	table.AddRow("Cancelled:", stats.Cancelled)
	table.AddRow("Timed out:", stats.TimedOut)
	table.AddRow("Success rate (24h):", fmt.Sprintf("%.1f%%", stats.SuccessRate24*100))
	for platform, avg := range stats.AvgWallTimeMs {
		table.AddRow(fmt.Sprintf("Avg wall time (%s):", platform),
			(time.Duration(avg) * time.Millisecond).String())
	}
	fmt.Fprintln(o.Out, table)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
