package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Structured data ids. 32473 is the documentation enterprise number of
// RFC5612.
const (
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// Syslog facilities.
const (
	FacilityUser     = 1
	FacilityAuthPriv = 10
)

const appName = "storefront"

// Severity is a syslog severity.
type Severity int

const (
	SeverityEmergency Severity = iota
	SeverityAlert
	SeverityCritical
	SeverityError
	SeverityWarning
	SeverityNotice
	SeverityInfo
	SeverityDebug
)

// Event is one auditable action.
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger writes events as RFC5424 lines.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	pid      int
	now      func() time.Time
}

// NewLogger creates a Logger writing to stdout.
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// SetWriter redirects the logger.
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Log writes one line:
//
//	<PRI>1 TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Log(event Event) {
	pri := event.Facility()*8 + int(event.Severity())
	timestamp := l.now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}
	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	line := fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri, timestamp, hostname, appName, l.pid, event.MessageID(), sd, event.Message())

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer, line)
}

// formatStructuredData renders [sdid k="v" ...] elements, sorted so that
// lines are stable.
func formatStructuredData(sd map[string]map[string]string) string {
	ids := make([]string, 0, len(sd))
	for id := range sd {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		params := sd[id]
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("[" + id)
		for _, k := range keys {
			b.WriteString(" " + k + "=" + escapeSDValue(params[k]))
		}
		b.WriteString("]")
	}
	return b.String()
}

// escapeSDValue quotes a param value, escaping per RFC5424 section 6.3.3.
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	value = strings.ReplaceAll(value, "]", `\]`)
	return `"` + value + `"`
}

// DefaultLogger receives every event passed to Log.
var DefaultLogger = NewLogger()

// DefaultStore persists events; nil unless AUDIT_DATABASE_URL is set.
var DefaultStore *Store

var (
	enabledMu     sync.Mutex
	enabled       = true
	enabledLoaded bool
	storeInitOnce sync.Once
)

// IsEnabled reports whether auditing is on. STOREFRONT_AUDIT_ENABLED set to
// false, 0 or no turns it off.
func IsEnabled() bool {
	enabledMu.Lock()
	defer enabledMu.Unlock()
	if !enabledLoaded {
		enabledLoaded = true
		if env := os.Getenv("STOREFRONT_AUDIT_ENABLED"); env != "" {
			enabled = env != "false" && env != "0" && env != "no"
		}
	}
	return enabled
}

// SetEnabled overrides the environment setting.
func SetEnabled(on bool) {
	enabledMu.Lock()
	defer enabledMu.Unlock()
	enabledLoaded = true
	enabled = on
}

// Log writes event to the default logger and store.
func Log(event Event) {
	LogContext(context.Background(), event)
}

// LogContext is Log bounded by ctx for the database write.
func LogContext(ctx context.Context, event Event) {
	if !IsEnabled() {
		return
	}
	DefaultLogger.Log(event)

	storeInitOnce.Do(func() {
		var err error
		DefaultStore, err = NewStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to connect to audit database: %v\n", err)
		}
	})
	if DefaultStore != nil {
		if err := DefaultStore.Save(ctx, event); err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to save event: %v\n", err)
		}
	}
}
