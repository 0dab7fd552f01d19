package model

// Event is a user-facing authentication event (login, logout, code exchange, ...).
// Events are written once and never updated, so they carry no setters.
type Event struct {
	Updatable `yaml:"-" json:"-"`

	ID             string            `yaml:"id" json:"id"`
	Time           int64             `yaml:"time" json:"time"` // epoch millis
	Type           string            `yaml:"type" json:"type"`
	RealmID        string            `yaml:"realmId" json:"realmId"`
	ClientID       string            `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	UserID         string            `yaml:"userId,omitempty" json:"userId,omitempty"`
	SessionID      string            `yaml:"sessionId,omitempty" json:"sessionId,omitempty"`
	IPAddress      string            `yaml:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	Error          string            `yaml:"error,omitempty" json:"error,omitempty"`
	Details        map[string]string `yaml:"details,omitempty" json:"details,omitempty"`
	ExpirationTime int64             `yaml:"expiration,omitempty" json:"expiration,omitempty"` // epoch millis, 0 = never
}

func (e *Event) GetID() string  { return e.ID }
func (e *Event) GetTime() int64 { return e.Time }

// AuthDetails identifies who performed an admin operation.
type AuthDetails struct {
	RealmID   string `yaml:"realmId,omitempty" json:"realmId,omitempty"`
	ClientID  string `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	UserID    string `yaml:"userId,omitempty" json:"userId,omitempty"`
	IPAddress string `yaml:"ipAddress,omitempty" json:"ipAddress,omitempty"`
}

// AdminEvent records an operation performed through the admin API.
type AdminEvent struct {
	Updatable `yaml:"-" json:"-"`

	ID             string      `yaml:"id" json:"id"`
	Time           int64       `yaml:"time" json:"time"` // epoch millis
	RealmID        string      `yaml:"realmId" json:"realmId"`
	AuthDetails    AuthDetails `yaml:"authDetails" json:"authDetails"`
	OperationType  string      `yaml:"operationType" json:"operationType"`
	ResourceType   string      `yaml:"resourceType,omitempty" json:"resourceType,omitempty"`
	ResourcePath   string      `yaml:"resourcePath,omitempty" json:"resourcePath,omitempty"`
	Representation string      `yaml:"representation,omitempty" json:"representation,omitempty"`
	Error          string      `yaml:"error,omitempty" json:"error,omitempty"`
}

func (e *AdminEvent) GetID() string  { return e.ID }
func (e *AdminEvent) GetTime() int64 { return e.Time }
