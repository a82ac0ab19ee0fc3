package instance

import "os"

// GetID identifies this process in logs: STOREFRONT_INSTANCE_ID, then the platform
// dyno name, then "local".
func GetID() string {
	for _, key := range []string{"STOREFRONT_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
