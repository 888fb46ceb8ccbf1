package domain

// IntentType categorises a navigation request emitted by pkg/navigation.
type IntentType string

const (
	// IntentApp moves the host application to an in-app path.
	IntentApp IntentType = "APP"
	// IntentAdminSection opens a resource page of the hosting admin.
	IntentAdminSection IntentType = "ADMIN_SECTION"
	// IntentLoadingStart shows the host's loading indicator.
	IntentLoadingStart IntentType = "LOADING_START"
)

// ResourceType names an admin-section resource.
type ResourceType string

const (
	ResourceOrder   ResourceType = "Order"
	ResourceProduct ResourceType = "Product"
)

// Intent is a navigation request handed to the host.
type Intent struct {
	Type     IntentType   `json:"type"`
	Path     string       `json:"path,omitempty"`
	Resource ResourceType `json:"resource,omitempty"`
	ID       string       `json:"id,omitempty"`
}
