package info

import (
	"fmt"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	hoststat "github.com/likexian/host-stat-go"
	"github.com/spf13/cobra"

	"github.com/kiosk404/scrivener/pkg/cli/genericclioptions"
	"github.com/kiosk404/scrivener/pkg/version"
)

var infoExample = heredoc.Doc(`
		# Print host and client information
		scrivctl info`)

// Info is an options struct to support the 'info' sub command.
type Info struct {
	genericclioptions.IOStreams
}

// NewInfoOptions returns an initialized Info instance.
func NewInfoOptions(ioStreams genericclioptions.IOStreams) *Info {
	return &Info{IOStreams: ioStreams}
}

// NewCmdInfo returns new initialized instance of the 'info' sub command.
func NewCmdInfo(ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewInfoOptions(ioStreams)

	cmd := &cobra.Command{
		Use:                   "info",
		DisableFlagsInUseLine: true,
		Short:                 "Print the host information",
		Example:               infoExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run()
		},
	}

	return cmd
}

// Run executes the info sub command.
func (o *Info) Run() error {
	rows := [][2]string{
		{"Version", version.Get().GitVersion},
		{"GoVersion", version.Get().GoVersion},
		{"Platform", version.Get().Platform},
	}

	hostInfo, err := hoststat.GetHostInfo()
	if err != nil {
		return fmt.Errorf("get host info failed!error:%w", err)
	}
	rows = append(rows,
		[2]string{"HostName", hostInfo.HostName},
		[2]string{"OSRelease", hostInfo.Release + " " + hostInfo.OSBit},
	)

	cpuInfo, err := hoststat.GetCPUInfo()
	if err != nil {
		return fmt.Errorf("get cpu stat failed!error:%w", err)
	}
	rows = append(rows, [2]string{"CPUCore", strconv.FormatUint(cpuInfo.CoreCount, 10)})

	memStat, err := hoststat.GetMemStat()
	if err != nil {
		return fmt.Errorf("get mem stat failed!error:%w", err)
	}
	rows = append(rows,
		[2]string{"MemTotal", strconv.FormatUint(memStat.MemTotal, 10) + "M"},
		[2]string{"MemFree", strconv.FormatUint(memStat.MemFree, 10) + "M"},
	)

	for _, row := range rows {
		fmt.Fprintf(o.Out, "%12s %s\n", row[0]+":", row[1])
	}
	return nil
}
