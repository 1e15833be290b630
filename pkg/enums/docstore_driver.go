package enums

import "fmt"

// DocStoreDriver names the document database backend.
type DocStoreDriver string

const (
	DocStoreDriverMemory    DocStoreDriver = "memory"
	DocStoreDriverFirestore DocStoreDriver = "firestore"
	DocStoreDriverMongo     DocStoreDriver = "mongo"
)

var validDocStoreDrivers = []DocStoreDriver{
	DocStoreDriverMemory,
	DocStoreDriverFirestore,
	DocStoreDriverMongo,
}

// IsValid reports whether the value matches a supported driver.
func (d DocStoreDriver) IsValid() bool {
	for _, candidate := range validDocStoreDrivers {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocStoreDriver converts the raw string to DocStoreDriver.
func ParseDocStoreDriver(value string) (DocStoreDriver, error) {
	for _, candidate := range validDocStoreDrivers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid docstore driver %q", value)
}
