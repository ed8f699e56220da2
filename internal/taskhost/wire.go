package taskhost

import "encoding/json"

// TaskHostTaskComplete is the wire record a remote task host would send back
// to the engine once a task finishes (spec §9, property R1): the task's
// boolean result plus its harvested output parameters. Serialized with
// encoding/json, the same library the teacher reaches for whenever it needs
// a stable on-disk/over-the-wire record (cmd/streamy/show.go, list.go).
type TaskHostTaskComplete struct {
	TaskResult       bool              `json:"taskResult"`
	OutputParameters map[string]string `json:"outputParameters"`
}

// MarshalTaskComplete serializes rec to its wire form.
func MarshalTaskComplete(rec TaskHostTaskComplete) ([]byte, error) {
	return json.Marshal(rec)
}

// UnmarshalTaskComplete parses data produced by MarshalTaskComplete.
func UnmarshalTaskComplete(data []byte) (TaskHostTaskComplete, error) {
	var rec TaskHostTaskComplete
	err := json.Unmarshal(data, &rec)
	return rec, err
}
