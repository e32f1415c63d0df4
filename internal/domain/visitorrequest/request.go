// Package visitorrequest defines a visitor's request to join an exhibitor's
// staff and the outcome of approving it.
package visitorrequest

import (
	"encoding/json"
	"fmt"

	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/utils"
)

const approvePath = "APROBAR"

type Request struct {
	ID            utils.ID   `json:"_id"`
	VisitorID     utils.ID   `json:"id_visitante"`
	FullName      string     `json:"nombreyapellido"`
	Email         string     `json:"email"`
	RequestedAt   string     `json:"fecha_solicitud"`
	App           utils.Flag `json:"app"`
	ExhibitorID   utils.ID   `json:"id_expositor"`
	ExhibitorName string     `json:"expositor"`
}

func (r *Request) UnmarshalJSON(data []byte) error {
	type alias Request
	aux := struct {
		*alias
		AltID           utils.ID `json:"id"`
		Nombre          string   `json:"nombre"`
		ExpositorID     utils.ID `json:"expositor_id"`
		NombreExpositor string   `json:"nombre_expositor"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ID == 0 {
		r.ID = aux.AltID
	}
	if r.FullName == "" {
		r.FullName = aux.Nombre
	}
	if r.ExhibitorID == 0 {
		r.ExhibitorID = aux.ExpositorID
	}
	if r.ExhibitorName == "" {
		r.ExhibitorName = aux.NombreExpositor
	}
	return nil
}

func (r Request) Cells() map[string]any {
	return map[string]any{
		constants.IDField: r.ID.Int64(),
		"nombreyapellido": utils.Display(r.FullName),
		"email":           utils.Display(r.Email),
		"fecha_solicitud": utils.Display(r.RequestedAt),
		"app":             r.App.YesNo(),
		"expositor":       utils.Display(r.ExhibitorName),
	}
}

// Status is the approval outcome reported by the backend.
type Status string

const (
	StatusApproved      Status = "approved"
	StatusAlreadyExists Status = "already_exists"
)

// Message turns the outcome into the text shown to the operator.
func (s Status) Message() string {
	switch s {
	case StatusApproved:
		return "Request approved and user created."
	case StatusAlreadyExists:
		return "The user already existed. The request was removed."
	default:
		return "Operation completed."
	}
}

// ApproveBody is posted to approve a request, optionally granting admin.
type ApproveBody struct {
	ID    int64 `json:"_id"`
	Admin int   `json:"admin"`
}

func NewApproveBody(id int64, asAdmin bool) ApproveBody {
	b := ApproveBody{ID: id}
	if asAdmin {
		b.Admin = 1
	}
	return b
}

// ApproveResult is the approval response.
type ApproveResult struct {
	Status Status `json:"status"`
}

// ApprovePath and DeletePath resolve the approval routes under base.
func ApprovePath(base string) string {
	return base + approvePath
}

func DeletePath(base string, id int64) string {
	return fmt.Sprintf("%sID/%d", base, id)
}
