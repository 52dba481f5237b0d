// ABOUTME: Build identity constants
// ABOUTME: Product name and version reported in logs
package version

const (
	Product = "Stillwave"
	Version = "0.3.0"
)
