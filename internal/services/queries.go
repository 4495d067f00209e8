package services

// SQL used by the orchestrator itself. Entity inserts live with the batch
// loader and registry.

const (
	// queryCustomDevice finds the custom device type of a package.
	// Parameters: package id, code, name
	queryCustomDevice = `
		SELECT DEVICE_TYPE_ID FROM DEVICE_TYPE
		WHERE PACKAGE_REF = ? AND CODE = ? AND NAME = ?
	`

	insertCustomDevice = `
		INSERT INTO DEVICE_TYPE (PACKAGE_REF, DOMAIN, CODE, PROFILE_ID, NAME, DESCRIPTION)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	// queryClusterByName matches the exact cluster name within a package scope.
	// The {scope} marker is replaced with an IN list.
	queryClusterByName = `
		SELECT CLUSTER_ID FROM CLUSTER
		WHERE NAME = ? AND PACKAGE_REF IN {scope}
		ORDER BY CLUSTER_ID
	`

	// queryClusterAttributeNames lists the attribute names of a cluster plus
	// every global attribute in scope.
	queryClusterAttributeNames = `
		SELECT DISTINCT NAME FROM ATTRIBUTE
		WHERE CLUSTER_REF = ? OR (CLUSTER_REF IS NULL AND PACKAGE_REF IN {scope})
	`
)

// Custom device type inserted for manifests with supportCustomZclDevice.
const (
	customDeviceDomain      = "Custom"
	customDeviceCode        = 0xFFFF
	customDeviceProfileID   = 0xFFFF
	customDeviceName        = "Custom ZCL Device Type"
	customDeviceDescription = "Custom ZCL device type supports any combination of clusters and attributes"
)
