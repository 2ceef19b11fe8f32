package record

// Protocols with a reserved meaning.
const (
	ProtocolEmpty    = "empty"
	ProtocolAdmin    = "admin"
	ProtocolOverride = "override"
	ProtocolRoute    = "route"
	ProtocolConsumer = "consumer"
)

// Categories partition the cache.
const (
	CategoryProviders     = "providers"
	CategoryConsumers     = "consumers"
	CategoryRouters       = "routers"
	CategoryConfigurators = "configurators"

	DefaultCategory = CategoryProviders
)

// AllCategories lists every category the synchronizer subscribes to.
var AllCategories = []string{
	CategoryProviders,
	CategoryConsumers,
	CategoryRouters,
	CategoryConfigurators,
}

// Well-known parameter keys.
const (
	KeyInterface   = "interface"
	KeyGroup       = "group"
	KeyVersion     = "version"
	KeyCategory    = "category"
	KeyApplication = "application"
	KeyClassifier  = "classifier"
	KeyCheck       = "check"
	KeyDynamic     = "dynamic"
	KeyEnabled     = "enabled"
	KeyDisabled    = "disabled"
	KeyWeight      = "weight"
	KeyOwner       = "owner"
	KeyAnyHost     = "anyhost"
	KeyName        = "name"
	KeyPriority    = "priority"
	KeyForce       = "force"
	KeyRule        = "rule"
	KeyRouter      = "router"
	KeyRuntime     = "runtime"
	KeyMethods     = "methods"
	KeyMock        = "mock"
	KeyTimestamp   = "timestamp"
)

const (
	// AnyValue is the wildcard used in subscription descriptors and tombstones.
	AnyValue = "*"
	// AnyHost is the placeholder host of records that apply to every address.
	AnyHost = "0.0.0.0"
	// DefaultWeight is the provider weight when none is announced.
	DefaultWeight = 100
)
