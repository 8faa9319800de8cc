package tonemap

const (
	// MinAnchors is the smallest accepted anchor count.
	MinAnchors = 1
	// MaxAnchors is the largest accepted anchor count.
	MaxAnchors = 10
)

// DefaultMetadataKey is the PNG text keyword that carries anchor metadata.
const DefaultMetadataKey = "anchors"

const (
	maxIntensity = 255.0

	metaKeyAnchors      = "anchors"
	metaKeyReflection   = "reflectionMode"
	metaKeyGrayscale    = "grayscaleMode"
	defaultPreviewWidth = 512
)
