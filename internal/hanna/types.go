package hanna

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Device is one controller as returned by the Devices query. Fields we never
// interpret are kept as raw JSON so schema drift on the remote side does not
// break decoding.
type Device struct {
	MongoID       string          `json:"_id"`
	ID            string          `json:"DID"`
	Model         string          `json:"DM"`
	ModelGroup    string          `json:"modelGroup"`
	Timestamp     json.RawMessage `json:"DT"`
	Info          DeviceInfo      `json:"DINFO"`
	ParentID      string          `json:"parentId"`
	ChildDevices  []ChildDevice   `json:"childDevices"`
	DeviceOrder   json.RawMessage `json:"deviceOrder"`
	SecondaryUser json.RawMessage `json:"secondaryUser"`
	Settings      json.RawMessage `json:"reportedSettings"`
	Status        string          `json:"status"`
	LastUpdated   string          `json:"lastUpdated"`
	Message       string          `json:"message"`
	Name          string          `json:"deviceName"`
	BatteryStatus string          `json:"batteryStatus"`
}

// DeviceInfo is the nested DINFO block with user-assigned metadata.
type DeviceInfo struct {
	DeviceName    string         `json:"deviceName"`
	DeviceVersion string         `json:"deviceVersion"`
	UserID        string         `json:"userId"`
	EmailID       string         `json:"emailId"`
	AssignedUsers []AssignedUser `json:"assignedUsers"`
	TankID        string         `json:"tankId"`
	TankName      string         `json:"tankName"`
}

type AssignedUser struct {
	EmailID string `json:"emailId"`
}

type ChildDevice struct {
	ID string `json:"DID"`
}

// DisplayName resolves the human-facing name with the same fallback chain the
// cloud dashboard uses: top-level deviceName, then DINFO.deviceName, then a
// generated placeholder.
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Info.DeviceName != "" {
		return d.Info.DeviceName
	}
	return fmt.Sprintf("Device %s", d.ID)
}

// Reading is the last recorded measurement set for one device.
type Reading struct {
	DeviceID  string          `json:"DID"`
	Timestamp json.RawMessage `json:"DT"`
	Messages  Messages        `json:"messages"`
}

// Messages is the structured measurement payload attached to a reading.
// Numeric values occasionally arrive as strings, so leaf values stay as `any`
// and callers convert (see internal/reading).
type Messages struct {
	Parameters       []Parameter    `json:"parameters"`
	Status           map[string]any `json:"status"`
	LastDosedVolumes map[string]any `json:"lastDosedVolumes"`
	GLP              map[string]any `json:"glp"`
	Alarms           []any          `json:"alarms"`
	Warnings         []any          `json:"warnings"`
	Errors           []any          `json:"errors"`
	ConnectionState  string         `json:"connectionState"`
}

// Parameter is one measured quantity (ph, temp, orp, cl, acidBase).
type Parameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type loginPayload struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
}

// loginResult absorbs the two shapes the auth endpoint has been observed to
// emit for the login field: a single object, or a list with the payload as
// first element. Both are live behavior of the remote API, not a guess.
type loginResult struct {
	list   []loginPayload
	single *loginPayload
}

func (l *loginResult) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.list)
	}
	var single loginPayload
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	l.single = &single
	return nil
}

// Token returns the bearer token from whichever shape was decoded. An empty
// list, empty object, or payload without a token all report false.
func (l loginResult) Token() (string, bool) {
	if len(l.list) > 0 && l.list[0].Token != "" {
		return l.list[0].Token, true
	}
	if l.single != nil && l.single.Token != "" {
		return l.single.Token, true
	}
	return "", false
}
