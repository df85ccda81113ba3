package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://github.com/vango-dev/vdiff/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Config file not readable",
		Detail:   "The configuration file could not be opened or parsed.",
		DocURL:   docBase + "e101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range or malformed.",
		DocURL:   docBase + "e102",
	},

	// ============================================
	// Snapshot Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategorySnapshot,
		Message:  "Snapshot document is not valid YAML or JSON",
		Detail:   "The snapshot could not be parsed. Check indentation and quoting.",
		DocURL:   docBase + "e201",
	},
	"E202": {
		Category: CategorySnapshot,
		Message:  "Snapshot does not match the tree schema",
		Detail:   "Every node needs either a tag (element) or a text field (text node); attributes need a name and either a value or a handler.",
		DocURL:   docBase + "e202",
	},
	"E203": {
		Category: CategorySnapshot,
		Message:  "Unknown handler reference",
		Detail:   "An attribute refers to a handler name that is not registered.",
		DocURL:   docBase + "e203",
	},
	"E204": {
		Category: CategorySnapshot,
		Message:  "Tree cannot be encoded as a snapshot",
		Detail:   "The tree holds a value or callback that has no snapshot representation.",
		DocURL:   docBase + "e204",
	},

	// ============================================
	// Store Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryStore,
		Message:  "Snapshot not found",
		Detail:   "No snapshot is stored under this name.",
		DocURL:   docBase + "e301",
	},
	"E302": {
		Category: CategoryStore,
		Message:  "Store read failed",
		Detail:   "The snapshot store returned an error while reading.",
		DocURL:   docBase + "e302",
	},
	"E303": {
		Category: CategoryStore,
		Message:  "Store write failed",
		Detail:   "The snapshot store returned an error while writing.",
		DocURL:   docBase + "e303",
	},
	"E304": {
		Category: CategoryStore,
		Message:  "Invalid store location",
		Detail:   "Store locations are directory paths, file:// URIs or s3://bucket/prefix URIs.",
		DocURL:   docBase + "e304",
	},

	// ============================================
	// Protocol / Server Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "The frame header or payload could not be decoded.",
		DocURL:   docBase + "e401",
	},
	"E402": {
		Category: CategoryProtocol,
		Message:  "Encoded patches exceed the frame size",
		Detail:   "The patch list does not fit in a single frame, even compressed.",
		DocURL:   docBase + "e402",
	},
	"E403": {
		Category: CategoryServer,
		Message:  "Invalid diff request",
		Detail:   "The request body must be a JSON object with \"old\" and \"new\" snapshot documents.",
		DocURL:   docBase + "e403",
	},

	// ============================================
	// CLI Errors (E501-E599)
	// ============================================

	"E501": {
		Category: CategoryCLI,
		Message:  "Unknown output format",
		Detail:   "Supported formats are text, json and binary.",
		DocURL:   docBase + "e501",
	},
	"E502": {
		Category: CategoryCLI,
		Message:  "Refusing to write binary output to a terminal",
		Detail:   "Binary patch frames are not meant for display.",
		DocURL:   docBase + "e502",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
