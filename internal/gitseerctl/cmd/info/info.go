package info

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gosuri/uitable"
	hoststat "github.com/likexian/host-stat-go"
	"github.com/spf13/cobra"

	"github.com/morgatz/gitseer/internal/gitseerctl/cmd/util"
)

var infoExample = heredoc.Doc(`
	# Print the host information
	gitseerctl info`)

// Info is an options struct to support the 'info' sub command.
type Info struct {
	util.IOStreams
}

// NewInfoOptions returns an initialized Info instance.
func NewInfoOptions(ioStreams util.IOStreams) *Info {
	return &Info{IOStreams: ioStreams}
}

// NewCmdInfo returns the 'info' sub command.
func NewCmdInfo(ioStreams util.IOStreams) *cobra.Command {
	o := NewInfoOptions(ioStreams)

	cmd := &cobra.Command{
		Use:                   "info",
		DisableFlagsInUseLine: true,
		Short:                 "Print the host information",
		Long:                  "Print the host information.",
		Example:               infoExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	return cmd
}

// Run executes the info sub command.
func (o *Info) Run(ctx context.Context, args []string) error {
	hostInfo, err := hoststat.GetHostInfo()
	if err != nil {
		return fmt.Errorf("get host info failed: %w", err)
	}

	memStat, err := hoststat.GetMemStat()
	if err != nil {
		return fmt.Errorf("get mem stat failed: %w", err)
	}

	cpuInfo, err := hoststat.GetCPUInfo()
	if err != nil {
		return fmt.Errorf("get cpu info failed: %w", err)
	}

	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("HostName:", hostInfo.HostName)
	table.AddRow("IPAddress:", localIP())
	table.AddRow("OSRelease:", hostInfo.Release+" "+hostInfo.OSBit)
	table.AddRow("CPUCore:", strconv.FormatUint(cpuInfo.CoreCount, 10))
	table.AddRow("MemTotal:", strconv.FormatUint(memStat.MemTotal, 10)+"M")
	table.AddRow("MemFree:", strconv.FormatUint(memStat.MemFree, 10)+"M")

	fmt.Fprintln(o.Out, table)
	return nil
}

// localIP returns the primary non-loopback IPv4 address, or empty.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}
