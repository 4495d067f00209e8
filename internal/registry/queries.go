package registry

const (
	queryPackageByPath = `
		SELECT PACKAGE_ID, PATH, CRC, TYPE, PARENT_PACKAGE_REF, VERSION, CATEGORY, DESCRIPTION
		FROM PACKAGE
		WHERE PATH = ?
	`

	queryPackageChildren = `
		SELECT PACKAGE_ID, PATH, CRC, TYPE, PARENT_PACKAGE_REF, VERSION, CATEGORY, DESCRIPTION
		FROM PACKAGE
		WHERE PARENT_PACKAGE_REF = ?
		ORDER BY PACKAGE_ID
	`

	queryPackages = `
		SELECT PACKAGE_ID, PATH, CRC, TYPE, PARENT_PACKAGE_REF, VERSION, CATEGORY, DESCRIPTION
		FROM PACKAGE
		ORDER BY PACKAGE_ID
	`

	insertPackage = `
		INSERT INTO PACKAGE (PATH, CRC, TYPE, PARENT_PACKAGE_REF)
		VALUES (?, ?, ?, ?)
		RETURNING PACKAGE_ID
	`

	updatePackageHash = `
		UPDATE PACKAGE SET CRC = ?, TYPE = ?, PARENT_PACKAGE_REF = ?
		WHERE PACKAGE_ID = ?
	`

	updatePackageParent = `UPDATE PACKAGE SET PARENT_PACKAGE_REF = ? WHERE PACKAGE_ID = ?`

	updatePackageVersion = `
		UPDATE PACKAGE SET VERSION = ?, CATEGORY = ?, DESCRIPTION = ?
		WHERE PACKAGE_ID = ?
	`

	deletePackage = `DELETE FROM PACKAGE WHERE PACKAGE_ID = ?`

	// queryDependents finds other packages whose rows hang off clusters or
	// global attributes owned by the package being superseded. Those rows
	// disappear through ON DELETE CASCADE, so the owners must reload.
	queryDependents = `
		SELECT DISTINCT D.PACKAGE_REF AS PACKAGE_REF FROM (
			SELECT PACKAGE_REF FROM ATTRIBUTE
			WHERE CLUSTER_REF IN (SELECT CLUSTER_ID FROM CLUSTER WHERE PACKAGE_REF = ?)
			UNION
			SELECT PACKAGE_REF FROM COMMAND
			WHERE CLUSTER_REF IN (SELECT CLUSTER_ID FROM CLUSTER WHERE PACKAGE_REF = ?)
			UNION
			SELECT PACKAGE_REF FROM EVENT
			WHERE CLUSTER_REF IN (SELECT CLUSTER_ID FROM CLUSTER WHERE PACKAGE_REF = ?)
			UNION
			SELECT PACKAGE_REF FROM GLOBAL_ATTRIBUTE_DEFAULT
			WHERE CLUSTER_REF IN (SELECT CLUSTER_ID FROM CLUSTER WHERE PACKAGE_REF = ?)
			UNION
			SELECT PACKAGE_REF FROM GLOBAL_ATTRIBUTE_DEFAULT
			WHERE ATTRIBUTE_REF IN (SELECT ATTRIBUTE_ID FROM ATTRIBUTE WHERE PACKAGE_REF = ?)
		) D
		WHERE D.PACKAGE_REF <> ?
		ORDER BY D.PACKAGE_REF
	`

	querySessionPackages = `
		SELECT PACKAGE_REF FROM SESSION_PACKAGE
		WHERE SESSION_ID = ?
		ORDER BY PACKAGE_REF
	`

	insertSessionPackage = `
		INSERT INTO SESSION_PACKAGE (SESSION_ID, PACKAGE_REF) VALUES (?, ?)
		ON CONFLICT (SESSION_ID, PACKAGE_REF) DO NOTHING
	`

	insertOption = `
		INSERT INTO PACKAGE_OPTION (PACKAGE_REF, OPTION_CATEGORY, OPTION_CODE, OPTION_LABEL)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (PACKAGE_REF, OPTION_CATEGORY, OPTION_CODE) DO NOTHING
	`

	querySelectOption = `
		SELECT OPTION_ID, OPTION_CATEGORY, OPTION_CODE, OPTION_LABEL
		FROM PACKAGE_OPTION
		WHERE PACKAGE_REF = ? AND OPTION_CATEGORY = ? AND UPPER(OPTION_CODE) = UPPER(?)
		ORDER BY OPTION_ID
	`

	queryOptions = `
		SELECT OPTION_ID, OPTION_CATEGORY, OPTION_CODE, OPTION_LABEL
		FROM PACKAGE_OPTION
		WHERE PACKAGE_REF = ? AND OPTION_CATEGORY = ?
		ORDER BY OPTION_ID
	`

	queryOptionDefault = `
		SELECT O.OPTION_ID AS OPTION_ID, O.OPTION_CATEGORY AS OPTION_CATEGORY,
		       O.OPTION_CODE AS OPTION_CODE, O.OPTION_LABEL AS OPTION_LABEL
		FROM PACKAGE_OPTION_DEFAULT D
		JOIN PACKAGE_OPTION O ON O.OPTION_ID = D.OPTION_REF
		WHERE D.PACKAGE_REF = ? AND D.OPTION_CATEGORY = ?
	`

	upsertOptionDefault = `
		INSERT INTO PACKAGE_OPTION_DEFAULT (PACKAGE_REF, OPTION_CATEGORY, OPTION_REF)
		VALUES (?, ?, ?)
		ON CONFLICT (PACKAGE_REF, OPTION_CATEGORY) DO UPDATE SET OPTION_REF = EXCLUDED.OPTION_REF
	`

	deleteOptionDefaults = `DELETE FROM PACKAGE_OPTION_DEFAULT WHERE PACKAGE_REF = ?`
	deleteOptions        = `DELETE FROM PACKAGE_OPTION WHERE PACKAGE_REF = ?`
)

// supersedeTables lists the tables holding rows owned through PACKAGE_REF,
// in delete order. Access links go first so that shared ACCESS rows are not
// left behind; clusters go after their members; vocabulary goes last.
// DISCRIMINATOR and PACKAGE_OPTION rows survive a supersede.
var supersedeTables = []string{
	"DEFAULT_ACCESS",
	"ACCESS",
	"GLOBAL_ATTRIBUTE_DEFAULT",
	"DEVICE_TYPE",
	"COMMAND",
	"ATTRIBUTE",
	"EVENT",
	"TAG",
	"CLUSTER",
	"DATA_TYPE",
	"ATOMIC",
	"DOMAIN",
	"SPEC",
	"OPERATION",
	"ROLE",
	"ACCESS_MODIFIER",
}
