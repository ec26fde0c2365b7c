package settings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Config is the chart configuration document. One per deployment.
type Config struct {
	TargetData     string `json:"targetData"`
	ProgramService string `json:"programService,omitempty"`
	PersonInCharge string `json:"personInCharge,omitempty"`
	Period         string `json:"period,omitempty"`
}

// Fingerprint identifies the content of c. Renders derived from a config are
// valid only while the stored config has the same fingerprint.
func (c Config) Fingerprint() string {
	h := sha256.New()
	for _, f := range []string{c.TargetData, c.ProgramService, c.PersonInCharge, c.Period} {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Patch is a partial update. Nil fields are left untouched by Save.
type Patch struct {
	TargetData     *string `json:"targetData,omitempty"`
	ProgramService *string `json:"programService,omitempty"`
	PersonInCharge *string `json:"personInCharge,omitempty"`
	Period         *string `json:"period,omitempty"`
}

var ErrEmptyPatch = errors.New("nothing to save")

// Store persists the configuration document.
//
// Load returns (nil, nil) when there is no document or no credentials to read
// one. Save is a merge-write: fields absent from the patch keep their stored value.
type Store interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, p Patch) error
}

// Full turns a complete config into a patch that writes every field.
func Full(c Config) Patch {
	return Patch{
		TargetData:     &c.TargetData,
		ProgramService: &c.ProgramService,
		PersonInCharge: &c.PersonInCharge,
		Period:         &c.Period,
	}
}

func (p Patch) IsEmpty() bool {
	return p.TargetData == nil && p.ProgramService == nil && p.PersonInCharge == nil && p.Period == nil
}

// Apply returns c with the patch fields written over it.
func (p Patch) Apply(c Config) Config {
	if p.TargetData != nil {
		c.TargetData = *p.TargetData
	}
	if p.ProgramService != nil {
		c.ProgramService = *p.ProgramService
	}
	if p.PersonInCharge != nil {
		c.PersonInCharge = *p.PersonInCharge
	}
	if p.Period != nil {
		c.Period = *p.Period
	}
	return c
}

// values lists the present fields by document field name.
func (p Patch) values() map[string]string {
	out := map[string]string{}
	if p.TargetData != nil {
		out["targetData"] = *p.TargetData
	}
	if p.ProgramService != nil {
		out["programService"] = *p.ProgramService
	}
	if p.PersonInCharge != nil {
		out["personInCharge"] = *p.PersonInCharge
	}
	if p.Period != nil {
		out["period"] = *p.Period
	}
	return out
}

// Unavailable is used when no backing store is configured. It never has data.
type Unavailable struct{}

func (Unavailable) Load(context.Context) (*Config, error) { return nil, nil }

func (Unavailable) Save(context.Context, Patch) error {
	return errors.New("chart settings storage is not configured")
}
