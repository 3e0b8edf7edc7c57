package ltemac

// desc-cfg.go holds the descriptors read at initialization:  SchedCfg configures
// one eNB scheduler, LinkTableDesc the link tables, and CellSimCfg a cell
// simulation.  Each can be read from or written to a yaml or json file, and each
// is checked by its Validate method before anything is built from it.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate checks the struct tags of the descriptors
var validate *validator.Validate = validator.New(validator.WithRequiredStructEnabled())

// tagErrs converts the error returned by validate.Struct into one error per failed field
func tagErrs(err error) []error {
	if err == nil {
		return []error{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			errs = append(errs, fmt.Errorf("%s is %v, violating %s=%s", fe.Namespace(), fe.Value(), fe.Tag(), fe.Param()))
		} else {
			errs = append(errs, fmt.Errorf("%s is %v, violating %s", fe.Namespace(), fe.Value(), fe.Tag()))
		}
	}
	return errs
}

// writeDesc serializes desc to filename, as yaml or json according to the extension
func writeDesc(desc any, filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(desc)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(desc, "", "\t")
	} else {
		return fmt.Errorf("output file %s needs a .yaml or .json extension", filename)
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

	return werr
}

// readDesc fills desc from dict, or from the named file when dict is empty
func readDesc(filename string, useYAML bool, dict []byte, desc any) error {
	var err error

	// read from the file only if the byte slice is empty
	if len(dict) == 0 {
		fileInfo, err := os.Stat(filename)
		if os.IsNotExist(err) || (err == nil && fileInfo.IsDir()) {
			return fmt.Errorf("descriptor file %s does not exist or cannot be read", filename)
		}
		dict, err = os.ReadFile(filename)
		if err != nil {
			return err
		}
	}

	if useYAML {
		err = yaml.Unmarshal(dict, desc)
	} else {
		err = json.Unmarshal(dict, desc)
	}
	return err
}

// SchedCfg configures an eNB scheduler
type SchedCfg struct {
	Name                    string     `json:"name" yaml:"name" validate:"required"`
	NumRb                   int        `json:"numrb" yaml:"numrb" validate:"oneof=6 15 25 50 75 100"`
	DlPolicy                PolicyKind `json:"dlpolicy" yaml:"dlpolicy" validate:"oneof=rr pf"`
	UlPolicy                PolicyKind `json:"ulpolicy" yaml:"ulpolicy" validate:"oneof=rr pf"`
	PfFilterCoefficient     int        `json:"pffiltercoefficient" yaml:"pffiltercoefficient" validate:"min=0,max=19"`
	UlRbgSize               int        `json:"ulrbgsize" yaml:"ulrbgsize" validate:"min=1"`
	MaxHarqTx               int        `json:"maxharqtx" yaml:"maxharqtx" validate:"min=1,max=8"`
	PucchOverhead           int        `json:"pucchoverhead" yaml:"pucchoverhead" validate:"min=0"`
	NumTxAntennas           int        `json:"numtxantennas" yaml:"numtxantennas" validate:"oneof=1 2"`
	EnableSubbandCqi        bool       `json:"enablesubbandcqi" yaml:"enablesubbandcqi"`
	UseFilteredInterference bool       `json:"usefilteredinterference" yaml:"usefilteredinterference"`
	P0Pusch                 float64    `json:"p0pusch" yaml:"p0pusch" validate:"min=-126,max=24"` // dBm
	Alpha                   float64    `json:"alpha" yaml:"alpha" validate:"min=0,max=1"`
	BlerTarget              float64    `json:"blertarget" yaml:"blertarget" validate:"gt=0,lt=1"`
	BlerOffsetDb            float64    `json:"bleroffsetdb" yaml:"bleroffsetdb" validate:"min=0"`
}

// DefaultSchedCfg returns the configuration of a 10 MHz cell with round-robin in both directions
func DefaultSchedCfg(name string) *SchedCfg {
	cfg := new(SchedCfg)
	cfg.Name = name
	cfg.NumRb = 50
	cfg.DlPolicy = PolicyRoundRobin
	cfg.UlPolicy = PolicyRoundRobin
	cfg.PfFilterCoefficient = 4
	cfg.UlRbgSize = 1
	cfg.MaxHarqTx = 4
	cfg.PucchOverhead = 2
	cfg.NumTxAntennas = 2
	cfg.EnableSubbandCqi = false
	cfg.UseFilteredInterference = true
	cfg.P0Pusch = -90.0
	cfg.Alpha = 1.0
	cfg.BlerTarget = 0.1
	cfg.BlerOffsetDb = 2.0
	return cfg
}

// Validate returns every problem found with the configuration, joined, or nil
func (cfg *SchedCfg) Validate() error {
	errs := tagErrs(validate.Struct(cfg))
	if cfg.PucchOverhead%2 != 0 {
		errs = append(errs, fmt.Errorf("scheduler %s PUCCH overhead %d is not even", cfg.Name, cfg.PucchOverhead))
	}
	if cfg.PucchOverhead >= cfg.NumRb {
		errs = append(errs, fmt.Errorf("scheduler %s PUCCH overhead %d leaves no PUSCH blocks of %d",
			cfg.Name, cfg.PucchOverhead, cfg.NumRb))
	} else if cfg.UlRbgSize > cfg.NumRb-cfg.PucchOverhead {
		errs = append(errs, fmt.Errorf("scheduler %s uplink RBG size %d exceeds the %d PUSCH blocks",
			cfg.Name, cfg.UlRbgSize, cfg.NumRb-cfg.PucchOverhead))
	}
	return errors.Join(errs...)
}

// WriteToFile stores the configuration, as yaml or json according to the file extension
func (cfg *SchedCfg) WriteToFile(filename string) error {
	return writeDesc(*cfg, filename)
}

// ReadSchedCfg deserializes a SchedCfg from dict, or from the named file when dict is empty.
// Fields the representation leaves out take their default values.
func ReadSchedCfg(filename string, useYAML bool, dict []byte) (*SchedCfg, error) {
	cfg := DefaultSchedCfg("")
	err := readDesc(filename, useYAML, dict, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LinkTableDesc holds the data StdLinkTables are built from
type LinkTableDesc struct {
	Name       string    `json:"name" yaml:"name" validate:"required"`
	CqiToMcs   []int     `json:"cqitomcs" yaml:"cqitomcs" validate:"len=16,dive,min=-1,max=28"`
	TbsAt10Rb  []int     `json:"tbsat10rb" yaml:"tbsat10rb" validate:"min=1,dive,gt=0"` // bits, by TBS index
	BlerSinrDb []float64 `json:"blersinrdb" yaml:"blersinrdb" validate:"min=1"`         // 10% BLER SINR, by MCS
	BlerSlope  float64   `json:"blerslope" yaml:"blerslope" validate:"gt=0"`
	MaxMcsDl   int       `json:"maxmcsdl" yaml:"maxmcsdl" validate:"min=0,max=28"`
	MaxMcsUl   int       `json:"maxmcsul" yaml:"maxmcsul" validate:"min=0,max=28"`
}

// DefaultLinkTableDesc returns the built-in tables
func DefaultLinkTableDesc() *LinkTableDesc {
	desc := new(LinkTableDesc)
	desc.Name = "default"
	desc.CqiToMcs = []int{-1, 0, 0, 2, 4, 6, 8, 11, 13, 15, 18, 20, 22, 24, 26, 28}
	desc.TbsAt10Rb = []int{256, 344, 424, 568, 696, 872, 1032, 1224, 1384, 1544, 1736, 2024, 2280,
		2536, 2856, 3112, 3240, 3624, 4008, 4264, 4584, 4968, 5352, 5736, 5992, 6200, 7480}
	desc.BlerSinrDb = make([]float64, 29)
	for mcs := range desc.BlerSinrDb {
		desc.BlerSinrDb[mcs] = -7.0 + 0.9*float64(mcs)
	}
	desc.BlerSlope = 1.5
	desc.MaxMcsDl = 28
	desc.MaxMcsUl = 28
	return desc
}

// Validate returns every problem found with the tables, joined, or nil
func (desc *LinkTableDesc) Validate() error {
	errs := tagErrs(validate.Struct(desc))
	highest := max(desc.MaxMcsDl, desc.MaxMcsUl)
	if highest >= len(desc.BlerSinrDb) {
		errs = append(errs, fmt.Errorf("link tables %s give BLER points for %d MCS values, MCS %d is usable",
			desc.Name, len(desc.BlerSinrDb), highest))
	}
	return errors.Join(errs...)
}

// WriteToFile stores the tables, as yaml or json according to the file extension
func (desc *LinkTableDesc) WriteToFile(filename string) error {
	return writeDesc(*desc, filename)
}

// ReadLinkTableDesc deserializes a LinkTableDesc from dict, or from the named file when dict is empty
func ReadLinkTableDesc(filename string, useYAML bool, dict []byte) (*LinkTableDesc, error) {
	desc := new(LinkTableDesc)
	err := readDesc(filename, useYAML, dict, desc)
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// arrival models of UeDesc
const (
	ArrivalExponential = "exp"
	ArrivalConstant    = "const"
)

// UeDesc describes one simulated UE
type UeDesc struct {
	Name         string  `json:"name" yaml:"name" validate:"required"`
	NodeID       int     `json:"nodeid" yaml:"nodeid" validate:"min=0"`
	IntrfcIdx    int     `json:"intrfcidx" yaml:"intrfcidx" validate:"min=0"`
	DlRateMbps   float64 `json:"dlratembps" yaml:"dlratembps" validate:"min=0"`
	UlRateMbps   float64 `json:"ulratembps" yaml:"ulratembps" validate:"min=0"`
	FrameSize    int     `json:"framesize" yaml:"framesize" validate:"gt=0"` // bytes per arrival
	ArrivalModel string  `json:"arrivalmodel" yaml:"arrivalmodel" validate:"oneof=exp const"`
	MeanCqi      float64 `json:"meancqi" yaml:"meancqi" validate:"min=1,max=15"`
	CqiSpread    int     `json:"cqispread" yaml:"cqispread" validate:"min=0,max=7"`
	Rank         int     `json:"rank" yaml:"rank" validate:"oneof=1 2"`
	PathlossDb   float64 `json:"pathlossdb" yaml:"pathlossdb" validate:"gt=0"`
}

// Rnti is the identifier the UE is scheduled under
func (ud *UeDesc) Rnti() Rnti {
	return CreateRnti(ud.NodeID, ud.IntrfcIdx)
}

// CellSimCfg configures a cell simulation
type CellSimCfg struct {
	Name             string   `json:"name" yaml:"name" validate:"required"`
	Sched            SchedCfg `json:"sched" yaml:"sched" validate:"-"`
	UEs              []UeDesc `json:"ues" yaml:"ues" validate:"min=1,dive"`
	Ttis             int      `json:"ttis" yaml:"ttis" validate:"min=1"`
	FeedbackDelayTti int      `json:"feedbackdelaytti" yaml:"feedbackdelaytti" validate:"min=1,max=7"`
	NoiseDbm         float64  `json:"noisedbm" yaml:"noisedbm"`               // thermal noise per RB
	InterferenceDbm  float64  `json:"interferencedbm" yaml:"interferencedbm"` // mean uplink interference per RB
	MaxUlTxPowerDbm  float64  `json:"maxultxpowerdbm" yaml:"maxultxpowerdbm"`
}

// DefaultCellSimCfg returns a simulation of one TTI-second with no UEs
func DefaultCellSimCfg(name string) *CellSimCfg {
	csc := new(CellSimCfg)
	csc.Name = name
	csc.Sched = *DefaultSchedCfg(name)
	csc.UEs = []UeDesc{}
	csc.Ttis = 1000
	csc.FeedbackDelayTti = 4
	csc.NoiseDbm = -121.0
	csc.InterferenceDbm = -110.0
	csc.MaxUlTxPowerDbm = 23.0
	return csc
}

// AddUe appends a UE description
func (csc *CellSimCfg) AddUe(ud UeDesc) {
	csc.UEs = append(csc.UEs, ud)
}

// Validate returns every problem found with the simulation configuration, its
// scheduler configuration included, joined, or nil
func (csc *CellSimCfg) Validate() error {
	errs := tagErrs(validate.Struct(csc))
	serr := csc.Sched.Validate()
	if serr != nil {
		errs = append(errs, serr)
	}
	seen := make(map[Rnti]string)
	for idx := range csc.UEs {
		rnti := csc.UEs[idx].Rnti()
		other, present := seen[rnti]
		if present {
			errs = append(errs, fmt.Errorf("UEs %s and %s share identifier %s", other, csc.UEs[idx].Name, rnti))
			continue
		}
		seen[rnti] = csc.UEs[idx].Name
	}
	return errors.Join(errs...)
}

// WriteToFile stores the simulation configuration, as yaml or json according to the file extension
func (csc *CellSimCfg) WriteToFile(filename string) error {
	return writeDesc(*csc, filename)
}

// ReadCellSimCfg deserializes a CellSimCfg from dict, or from the named file when dict is empty.
// Fields the representation leaves out take their default values.
func ReadCellSimCfg(filename string, useYAML bool, dict []byte) (*CellSimCfg, error) {
	csc := DefaultCellSimCfg("")
	err := readDesc(filename, useYAML, dict, csc)
	if err != nil {
		return nil, err
	}
	return csc, nil
}
