package audit

import "fmt"

// LoginEvent is a login attempt.
type LoginEvent struct {
	Username     string
	ClientIP     string
	SessionID    string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string { return "login" }

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s logged in", e.Username)
	}
	msg := fmt.Sprintf("%s failed to log in", e.Username)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e LoginEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e LoginEvent) Facility() int { return FacilityAuthPriv }

func (e LoginEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:   {"user": e.Username},
		SDIDClient: {"ip": e.ClientIP},
	}
	if e.SessionID != "" {
		sd[SDIDAuth]["session"] = e.SessionID
	}
	return sd
}

// LogoutEvent is an explicit logout or a session dropped by the remote side.
type LogoutEvent struct {
	Username  string
	ClientIP  string
	SessionID string
	// Reason is empty for an operator logout.
	Reason string
}

func (e LogoutEvent) MessageID() string { return "logout" }

func (e LogoutEvent) Message() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s was logged out: %s", e.Username, e.Reason)
	}
	return fmt.Sprintf("%s logged out", e.Username)
}

func (e LogoutEvent) Severity() Severity { return SeverityInfo }

func (e LogoutEvent) Facility() int { return FacilityAuthPriv }

func (e LogoutEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"user": e.Username, "session": e.SessionID},
		SDIDClient: {"ip": e.ClientIP},
	}
}

// ProductOperation is a catalog write.
type ProductOperation string

const (
	ProductAdd    ProductOperation = "add"
	ProductUpdate ProductOperation = "update"
	ProductDelete ProductOperation = "delete"
)

var pastTense = map[ProductOperation]string{
	ProductAdd:    "added",
	ProductUpdate: "updated",
	ProductDelete: "deleted",
}

// ProductEvent is a catalog write submitted by an operator.
type ProductEvent struct {
	Username  string
	ClientIP  string
	Operation ProductOperation
	// ProductID is zero for a failed add.
	ProductID    int
	Title        string
	Success      bool
	ErrorMessage string
}

func (e ProductEvent) MessageID() string { return "product" }

func (e ProductEvent) Message() string {
	subject := "a product"
	if e.ProductID != 0 {
		subject = fmt.Sprintf("product %d", e.ProductID)
	}
	if e.Success {
		return fmt.Sprintf("%s %s %s", e.Username, pastTense[e.Operation], subject)
	}
	msg := fmt.Sprintf("%s tried to %s %s", e.Username, e.Operation, subject)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ProductEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e ProductEvent) Facility() int { return FacilityUser }

func (e ProductEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:   {"user": e.Username},
		SDIDAction: {"operation": string(e.Operation), "result": result(e.Success)},
		SDIDClient: {"ip": e.ClientIP},
	}
	subject := map[string]string{}
	if e.ProductID != 0 {
		subject["product"] = fmt.Sprint(e.ProductID)
	}
	if e.Title != "" {
		subject["title"] = e.Title
	}
	if len(subject) > 0 {
		sd[SDIDSubject] = subject
	}
	return sd
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
