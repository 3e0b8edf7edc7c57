package ltemac

// trace.go holds TraceManager, which gathers a record of every allocation made
// during a simulation run so it can be written out for post-run analysis.

import (
	"encoding/json"
	"os"
	"path"
	"strconv"

	"github.com/iti/evt/vrtime"
	"gopkg.in/yaml.v3"
)

// TraceInst is one serialized trace record
type TraceInst struct {
	TraceTime string `json:"tracetime" yaml:"tracetime"`
	TraceType string `json:"tracetype" yaml:"tracetype"`
	TraceStr  string `json:"tracestr" yaml:"tracestr"`
}

// TraceManager gathers the allocation traces of an experiment
type TraceManager struct {
	// experiment uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	// UE name by Rnti string
	NameByRnti map[string]string `json:"namebyrnti" yaml:"namebyrnti"`

	// all trace records for this experiment, by TTI
	Traces map[uint64][]TraceInst `json:"traces" yaml:"traces"`
}

// CreateTraceManager is a constructor.  It saves the name of the experiment
// and a flag indicating whether the trace manager is active.  By testing this
// flag we can inhibit the activity of gathering a trace when we don't want it,
// while embedding calls to its methods everywhere we need them when it is
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.NameByRnti = make(map[string]string)
	tm.Traces = make(map[uint64][]TraceInst)
	return tm
}

// Active tells the caller whether the Trace Manager is actively being used
func (tm *TraceManager) Active() bool {
	return tm.InUse
}

// AddTrace stores a record under the TTI it belongs to
func (tm *TraceManager) AddTrace(tti uint64, trace TraceInst) {
	if !tm.InUse {
		return
	}
	tm.Traces[tti] = append(tm.Traces[tti], trace)
}

// AddName adds an element to the rnti -> name dictionary of the trace file
func (tm *TraceManager) AddName(rnti Rnti, name string) {
	if !tm.InUse {
		return
	}
	_, present := tm.NameByRnti[rnti.String()]
	if present {
		panic("duplicated rnti in AddName")
	}
	tm.NameByRnti[rnti.String()] = name
}

// WriteToFile stores the Traces struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (tm *TraceManager) WriteToFile(filename string) bool {
	if !tm.InUse {
		return false
	}
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*tm)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*tm, "", "\t")
	} else {
		return false
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	f.Close()
	return true
}

// AllocTrace records one allocation made in one TTI
type AllocTrace struct {
	Time    float64 `json:"time" yaml:"time"`
	Ticks   int64   `json:"ticks" yaml:"ticks"`
	Tti     uint64  `json:"tti" yaml:"tti"`
	Dir     string  `json:"dir" yaml:"dir"`
	Rnti    string  `json:"rnti" yaml:"rnti"`
	Rbs     []int   `json:"rbs" yaml:"rbs"`
	Scheme  string  `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	Mcs     []int   `json:"mcs" yaml:"mcs"`
	Bytes   int     `json:"bytes" yaml:"bytes"`
	NewData bool    `json:"newdata" yaml:"newdata"`
	Harq    int     `json:"harq" yaml:"harq"`
	RvIndex int     `json:"rvindex" yaml:"rvindex"`
}

func (at *AllocTrace) Serialize() string {
	bytes, merr := yaml.Marshal(*at)
	if merr != nil {
		panic(merr)
	}
	return string(bytes[:])
}

func (tm *TraceManager) addAllocTrace(vrt vrtime.Time, at *AllocTrace) {
	at.Time = vrt.Seconds()
	at.Ticks = vrt.Ticks()
	traceTime := strconv.FormatFloat(vrt.Seconds(), 'f', -1, 64)
	tm.AddTrace(at.Tti, TraceInst{TraceTime: traceTime, TraceType: "alloc", TraceStr: at.Serialize()})
}

// AddDlTrace records the downlink allocations of a TTI
func AddDlTrace(tm *TraceManager, vrt vrtime.Time, tti uint64, results []*DlSchedulingResult) {
	if tm == nil || !tm.InUse {
		return
	}
	for _, dr := range results {
		at := &AllocTrace{Tti: tti, Dir: Downlink.String(), Rnti: dr.Rnti.String(), Rbs: dr.Rbs.Indices(),
			Scheme: dr.Scheme.String(), Mcs: []int{}, Bytes: dr.DequeueSize(), NewData: dr.NewData()}
		for _, tb := range dr.Tbs {
			at.Mcs = append(at.Mcs, tb.Mcs)
			at.Harq = tb.HarqProcess
			at.RvIndex = tb.RvIndex
		}
		tm.addAllocTrace(vrt, at)
	}
}

// AddUlTrace records the uplink grants of a TTI
func AddUlTrace(tm *TraceManager, vrt vrtime.Time, tti uint64, results []*UlSchedulingResult) {
	if tm == nil || !tm.InUse {
		return
	}
	for _, ur := range results {
		at := &AllocTrace{Tti: tti, Dir: Uplink.String(), Rnti: ur.Rnti.String(), Rbs: ur.Rbs().Indices(),
			Mcs: []int{ur.Tb.Mcs}, Bytes: ur.Tb.DequeueSize, NewData: ur.NewData(),
			Harq: ur.Tb.HarqProcess, RvIndex: ur.Tb.RvIndex}
		tm.addAllocTrace(vrt, at)
	}
}
