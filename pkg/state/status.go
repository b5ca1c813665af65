package state

//go:generate go run github.com/dmarkham/enumer -type Status -trimprefix Status -transform lower -json -output status.gen.go

// Status is the lifecycle position of one asynchronous action.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusFulfilled
	StatusRejected
)

// Action names an asynchronous action of a container.
type Action string

const (
	ActionFetchProducts    Action = "products/fetchProducts"
	ActionSearchProducts   Action = "products/searchProducts"
	ActionFetchProductByID Action = "products/fetchProductById"
	ActionAddProduct       Action = "products/addProduct"
	ActionUpdateProduct    Action = "products/updateProduct"
	ActionDeleteProduct    Action = "products/deleteProduct"

	ActionLogin          Action = "auth/loginUser"
	ActionCurrentUser    Action = "auth/getCurrentUser"
	ActionRefreshSession Action = "auth/refreshSession"
)

// Lifecycle holds the request lifecycle flags of one action.
type Lifecycle struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Pending reports whether the action is in flight.
func (l Lifecycle) Pending() bool { return l.Status == StatusPending }

// Succeeded reports whether the last run of the action was fulfilled.
func (l Lifecycle) Succeeded() bool { return l.Status == StatusFulfilled }

// Failed reports whether the last run of the action was rejected.
func (l Lifecycle) Failed() bool { return l.Status == StatusRejected }

type requests map[Action]Lifecycle

func (r requests) begin(a Action) {
	r[a] = Lifecycle{Status: StatusPending}
}

func (r requests) settle(a Action, err error) {
	if err != nil {
		r[a] = Lifecycle{Status: StatusRejected, Error: err.Error()}
		return
	}
	r[a] = Lifecycle{Status: StatusFulfilled}
}

func (r requests) clone() map[Action]Lifecycle {
	out := make(map[Action]Lifecycle, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
