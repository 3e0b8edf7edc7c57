package main

// ltesim runs a cell simulation described by a CellSimCfg file, then writes a
// summary of the throughput each UE saw and, optionally, a trace of every allocation.

import (
	"flag"
	"fmt"
	"path"
	"strings"

	"github.com/iti/ltemac"
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/klog/v2"
)

var (
	cfgFile     string
	tablesFile  string
	traceFile   string
	summaryFile string
	ttis        int
	dlPolicy    string
	ulPolicy    string
)

// useYAML is true when the file extension names yaml
func useYAML(filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

func main() {
	flag.StringVar(&cfgFile, "cfg", "", "Cell simulation configuration (.yaml or .json).")
	flag.StringVar(&tablesFile, "tables", "", "Link tables replacing the built-in ones (.yaml or .json).")
	flag.StringVar(&traceFile, "trace", "", "File the allocation trace is written to.")
	flag.StringVar(&summaryFile, "summary", "", "File the run summary is written to.")
	flag.IntVar(&ttis, "ttis", 0, "Number of TTIs to simulate, overriding the configuration.")
	flag.StringVar(&dlPolicy, "dl", "", "Downlink policy (rr or pf), overriding the configuration.")
	flag.StringVar(&ulPolicy, "ul", "", "Uplink policy (rr or pf), overriding the configuration.")
	klog.InitFlags(flag.CommandLine)
	defer klog.Flush()
	flag.Parse()

	if cfgFile == "" {
		klog.Fatal("-cfg is required")
	}
	cfg, err := ltemac.ReadCellSimCfg(cfgFile, useYAML(cfgFile), nil)
	if err != nil {
		klog.Fatalf("Error reading %s: %v", cfgFile, err)
	}
	if ttis > 0 {
		cfg.Ttis = ttis
	}
	if dlPolicy != "" {
		cfg.Sched.DlPolicy = ltemac.PolicyKind(dlPolicy)
	}
	if ulPolicy != "" {
		cfg.Sched.UlPolicy = ltemac.PolicyKind(ulPolicy)
	}
	if err = cfg.Validate(); err != nil {
		klog.ErrorS(err, "invalid cell simulation configuration", "file", cfgFile)
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}

	var tables ltemac.LinkTables
	if tablesFile != "" {
		desc, err := ltemac.ReadLinkTableDesc(tablesFile, useYAML(tablesFile), nil)
		if err != nil {
			klog.Fatalf("Error reading %s: %v", tablesFile, err)
		}
		if err = desc.Validate(); err != nil {
			klog.ErrorS(err, "invalid link tables", "file", tablesFile)
			klog.FlushAndExit(klog.ExitFlushTimeout, 1)
		}
		tables = ltemac.CreateStdLinkTables(desc)
	}

	reg := prometheus.NewRegistry()
	metrics := ltemac.CreateSchedMetrics(reg)
	trace := ltemac.CreateTraceManager(cfg.Name, traceFile != "")

	cs := ltemac.CreateCellSim(cfg, tables, metrics, trace)
	summary := cs.Run()

	if traceFile != "" {
		trace.WriteToFile(traceFile)
	}
	if summaryFile != "" {
		if err = summary.WriteToFile(summaryFile); err != nil {
			klog.ErrorS(err, "summary not written", "file", summaryFile)
		}
	}

	fmt.Printf("%s: %d TTIs, dl %s, ul %s\n", summary.Name, summary.Ttis, summary.DlPolicy, summary.UlPolicy)
	for _, us := range summary.UEs {
		fmt.Printf("  %-12s %-8s dl %8.3f Mbps (%d retx)  ul %8.3f Mbps (%d retx)\n",
			us.Name, us.Rnti, us.DlMbps, us.DlRetx, us.UlMbps, us.UlRetx)
	}
	fmt.Printf("  fairness (Jain) dl %.3f ul %.3f\n", summary.JainDl, summary.JainUl)

	families, err := reg.Gather()
	if err != nil {
		klog.ErrorS(err, "gathering metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := []string{}
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			klog.InfoS("metric", "name", mf.GetName(), "labels", strings.Join(labels, ","),
				"value", m.GetCounter().GetValue())
		}
	}
}
