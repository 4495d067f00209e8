package resolve

import "fmt"

// Every statement takes the package scope as an IN list substituted for
// {scope}. Only NULL references that have a match are written, so the
// affected row count is the number of references resolved and running a
// pass twice is a no-op.
var (
	resolveDataTypeClusters = update("DATA_TYPE_CLUSTER", "CLUSTER_REF", `
			SELECT C.CLUSTER_ID FROM CLUSTER C
			WHERE C.CODE = DATA_TYPE_CLUSTER.CLUSTER_CODE AND C.PACKAGE_REF IN {scope}
			ORDER BY CASE WHEN C.MANUFACTURER_CODE IS NULL THEN 0 ELSE 1 END, C.CLUSTER_ID
			LIMIT 1`, `
		  AND DATA_TYPE_REF IN (SELECT DATA_TYPE_ID FROM DATA_TYPE WHERE PACKAGE_REF IN {scope})`)

	resolveDeviceTypeClusters = update("DEVICE_TYPE_CLUSTER", "CLUSTER_REF", `
			SELECT C.CLUSTER_ID FROM CLUSTER C
			WHERE LOWER(C.NAME) = LOWER(DEVICE_TYPE_CLUSTER.CLUSTER_NAME) AND C.PACKAGE_REF IN {scope}
			ORDER BY CASE WHEN C.MANUFACTURER_CODE IS NULL THEN 0 ELSE 1 END, C.CLUSTER_ID
			LIMIT 1`, `
		  AND DEVICE_TYPE_REF IN (SELECT DEVICE_TYPE_ID FROM DEVICE_TYPE WHERE PACKAGE_REF IN {scope})`)

	resolveDeviceTypeAttributes = update("DEVICE_TYPE_ATTRIBUTE", "ATTRIBUTE_REF", `
			SELECT A.ATTRIBUTE_ID FROM ATTRIBUTE A
			JOIN DEVICE_TYPE_CLUSTER D ON D.CLUSTER_REF = A.CLUSTER_REF
			WHERE D.DEVICE_TYPE_CLUSTER_ID = DEVICE_TYPE_ATTRIBUTE.DEVICE_TYPE_CLUSTER_REF
			  AND (LOWER(A.DEFINE) = LOWER(DEVICE_TYPE_ATTRIBUTE.ATTRIBUTE_NAME)
			    OR LOWER(A.NAME) = LOWER(DEVICE_TYPE_ATTRIBUTE.ATTRIBUTE_NAME))
			ORDER BY CASE WHEN A.SIDE = 'server' THEN 0 ELSE 1 END, A.ATTRIBUTE_ID
			LIMIT 1`, deviceTypeClusterScope)

	resolveDeviceTypeCommands = update("DEVICE_TYPE_COMMAND", "COMMAND_REF", `
			SELECT M.COMMAND_ID FROM COMMAND M
			JOIN DEVICE_TYPE_CLUSTER D ON D.CLUSTER_REF = M.CLUSTER_REF
			WHERE D.DEVICE_TYPE_CLUSTER_ID = DEVICE_TYPE_COMMAND.DEVICE_TYPE_CLUSTER_REF
			  AND LOWER(M.NAME) = LOWER(DEVICE_TYPE_COMMAND.COMMAND_NAME)
			ORDER BY M.COMMAND_ID
			LIMIT 1`, deviceTypeClusterScope)

	resolveCommandResponses = update("COMMAND", "RESPONSE_REF", `
			SELECT R.COMMAND_ID FROM COMMAND R
			WHERE LOWER(R.NAME) = LOWER(COMMAND.RESPONSE_NAME)
			  AND (R.CLUSTER_REF = COMMAND.CLUSTER_REF OR (R.CLUSTER_REF IS NULL AND COMMAND.CLUSTER_REF IS NULL))
			  AND R.PACKAGE_REF IN {scope}
			ORDER BY R.COMMAND_ID
			LIMIT 1`, `
		  AND RESPONSE_NAME IS NOT NULL AND PACKAGE_REF IN {scope}`)
)

// Access rows name their operation, role and modifier. A name declared by
// a file loaded later in the same load is resolved here.
var (
	resolveAccessOperations = accessUpdate("OPERATION", "OPERATION")
	resolveAccessRoles      = accessUpdate("ROLE", "ROLE")
	resolveAccessModifiers  = accessUpdate("ACCESS_MODIFIER", "ACCESS_MODIFIER")
)

func accessUpdate(column, table string) string {
	return update("ACCESS", column+"_REF", fmt.Sprintf(`
			SELECT V.%[2]s_ID FROM %[2]s V
			WHERE LOWER(V.NAME) = LOWER(ACCESS.%[1]s_NAME) AND V.PACKAGE_REF IN {scope}
			ORDER BY V.%[2]s_ID
			LIMIT 1`, column, table), fmt.Sprintf(`
		  AND %s_NAME IS NOT NULL AND PACKAGE_REF IN {scope}`, column))
}

const deviceTypeClusterScope = `
		  AND DEVICE_TYPE_CLUSTER_REF IN (
			SELECT D.DEVICE_TYPE_CLUSTER_ID FROM DEVICE_TYPE_CLUSTER D
			JOIN DEVICE_TYPE T ON T.DEVICE_TYPE_ID = D.DEVICE_TYPE_REF
			WHERE T.PACKAGE_REF IN {scope})`

// update builds a correlated UPDATE that sets column from match on rows
// where it is NULL and match finds a row.
func update(table, column, match, filter string) string {
	return fmt.Sprintf(`
		UPDATE %[1]s SET %[2]s = (%[3]s)
		WHERE %[2]s IS NULL AND EXISTS (%[3]s)%[4]s
	`, table, column, match, filter)
}

const (
	queryDataTypeCandidates = `
		SELECT D.DATA_TYPE_ID, DC.CLUSTER_CODE
		FROM DATA_TYPE D
		LEFT JOIN DATA_TYPE_CLUSTER DC ON DC.DATA_TYPE_REF = D.DATA_TYPE_ID
		WHERE LOWER(D.NAME) = ? AND D.PACKAGE_REF IN {scope}
		ORDER BY D.DATA_TYPE_ID
	`
)

// typedTable describes a table whose TYPE column is resolved to a
// DATA_TYPE_REF. pending selects ID, TYPE_NAME and CLUSTER_CODE of the
// unresolved rows in scope.
type typedTable struct {
	name    string
	pending string
	update  string
}

var typedTables = []typedTable{
	{
		name: "ATTRIBUTE",
		pending: `
			SELECT A.ATTRIBUTE_ID AS ID, A.NAME AS OWNER, A.TYPE AS TYPE_NAME, C.CODE AS CLUSTER_CODE
			FROM ATTRIBUTE A LEFT JOIN CLUSTER C ON C.CLUSTER_ID = A.CLUSTER_REF
			WHERE A.DATA_TYPE_REF IS NULL AND A.TYPE IS NOT NULL AND A.PACKAGE_REF IN {scope}
			ORDER BY A.ATTRIBUTE_ID`,
		update: `UPDATE ATTRIBUTE SET DATA_TYPE_REF = ? WHERE ATTRIBUTE_ID = ?`,
	},
	{
		name: "COMMAND_ARG",
		pending: `
			SELECT X.COMMAND_ARG_ID AS ID, M.NAME AS OWNER, X.TYPE AS TYPE_NAME, C.CODE AS CLUSTER_CODE
			FROM COMMAND_ARG X
			JOIN COMMAND M ON M.COMMAND_ID = X.COMMAND_REF
			LEFT JOIN CLUSTER C ON C.CLUSTER_ID = M.CLUSTER_REF
			WHERE X.DATA_TYPE_REF IS NULL AND X.TYPE IS NOT NULL AND M.PACKAGE_REF IN {scope}
			ORDER BY X.COMMAND_ARG_ID`,
		update: `UPDATE COMMAND_ARG SET DATA_TYPE_REF = ? WHERE COMMAND_ARG_ID = ?`,
	},
	{
		name: "EVENT_FIELD",
		pending: `
			SELECT X.EVENT_FIELD_ID AS ID, E.NAME AS OWNER, X.TYPE AS TYPE_NAME, C.CODE AS CLUSTER_CODE
			FROM EVENT_FIELD X
			JOIN EVENT E ON E.EVENT_ID = X.EVENT_REF
			LEFT JOIN CLUSTER C ON C.CLUSTER_ID = E.CLUSTER_REF
			WHERE X.DATA_TYPE_REF IS NULL AND X.TYPE IS NOT NULL AND E.PACKAGE_REF IN {scope}
			ORDER BY X.EVENT_FIELD_ID`,
		update: `UPDATE EVENT_FIELD SET DATA_TYPE_REF = ? WHERE EVENT_FIELD_ID = ?`,
	},
	{
		name: "STRUCT_ITEM",
		pending: `
			SELECT X.STRUCT_ITEM_ID AS ID, D.NAME AS OWNER, X.TYPE AS TYPE_NAME,
			       (SELECT MIN(DC.CLUSTER_CODE) FROM DATA_TYPE_CLUSTER DC WHERE DC.DATA_TYPE_REF = X.STRUCT_REF) AS CLUSTER_CODE
			FROM STRUCT_ITEM X
			JOIN DATA_TYPE D ON D.DATA_TYPE_ID = X.STRUCT_REF
			WHERE X.DATA_TYPE_REF IS NULL AND X.TYPE IS NOT NULL AND D.PACKAGE_REF IN {scope}
			ORDER BY X.STRUCT_ITEM_ID`,
		update: `UPDATE STRUCT_ITEM SET DATA_TYPE_REF = ? WHERE STRUCT_ITEM_ID = ?`,
	},
}

// Orphan queries list named references still NULL after resolution.
const (
	orphanDataTypeClusters = `
		SELECT D.NAME AS OWNER, DC.CLUSTER_CODE AS NAME
		FROM DATA_TYPE_CLUSTER DC JOIN DATA_TYPE D ON D.DATA_TYPE_ID = DC.DATA_TYPE_REF
		WHERE DC.CLUSTER_REF IS NULL AND D.PACKAGE_REF IN {scope}
		ORDER BY D.NAME`

	orphanDeviceTypeClusters = `
		SELECT T.NAME AS OWNER, D.CLUSTER_NAME AS NAME
		FROM DEVICE_TYPE_CLUSTER D JOIN DEVICE_TYPE T ON T.DEVICE_TYPE_ID = D.DEVICE_TYPE_REF
		WHERE D.CLUSTER_REF IS NULL AND T.PACKAGE_REF IN {scope}
		ORDER BY T.NAME`

	orphanDeviceTypeAttributes = `
		SELECT T.NAME || '/' || D.CLUSTER_NAME AS OWNER, A.ATTRIBUTE_NAME AS NAME
		FROM DEVICE_TYPE_ATTRIBUTE A
		JOIN DEVICE_TYPE_CLUSTER D ON D.DEVICE_TYPE_CLUSTER_ID = A.DEVICE_TYPE_CLUSTER_REF
		JOIN DEVICE_TYPE T ON T.DEVICE_TYPE_ID = D.DEVICE_TYPE_REF
		WHERE A.ATTRIBUTE_REF IS NULL AND T.PACKAGE_REF IN {scope}
		ORDER BY T.NAME`

	orphanDeviceTypeCommands = `
		SELECT T.NAME || '/' || D.CLUSTER_NAME AS OWNER, M.COMMAND_NAME AS NAME
		FROM DEVICE_TYPE_COMMAND M
		JOIN DEVICE_TYPE_CLUSTER D ON D.DEVICE_TYPE_CLUSTER_ID = M.DEVICE_TYPE_CLUSTER_REF
		JOIN DEVICE_TYPE T ON T.DEVICE_TYPE_ID = D.DEVICE_TYPE_REF
		WHERE M.COMMAND_REF IS NULL AND T.PACKAGE_REF IN {scope}
		ORDER BY T.NAME`

	orphanAccessOperations = `
		SELECT DISTINCT P.PATH AS OWNER, A.OPERATION_NAME AS NAME
		FROM ACCESS A JOIN PACKAGE P ON P.PACKAGE_ID = A.PACKAGE_REF
		WHERE A.OPERATION_REF IS NULL AND A.OPERATION_NAME IS NOT NULL AND A.PACKAGE_REF IN {scope}
		ORDER BY OWNER, NAME`

	orphanAccessRoles = `
		SELECT DISTINCT P.PATH AS OWNER, A.ROLE_NAME AS NAME
		FROM ACCESS A JOIN PACKAGE P ON P.PACKAGE_ID = A.PACKAGE_REF
		WHERE A.ROLE_REF IS NULL AND A.ROLE_NAME IS NOT NULL AND A.PACKAGE_REF IN {scope}
		ORDER BY OWNER, NAME`

	orphanAccessModifiers = `
		SELECT DISTINCT P.PATH AS OWNER, A.ACCESS_MODIFIER_NAME AS NAME
		FROM ACCESS A JOIN PACKAGE P ON P.PACKAGE_ID = A.PACKAGE_REF
		WHERE A.ACCESS_MODIFIER_REF IS NULL AND A.ACCESS_MODIFIER_NAME IS NOT NULL AND A.PACKAGE_REF IN {scope}
		ORDER BY OWNER, NAME`

	orphanResponses = `
		SELECT NAME AS OWNER, RESPONSE_NAME AS NAME
		FROM COMMAND
		WHERE RESPONSE_REF IS NULL AND RESPONSE_NAME IS NOT NULL AND PACKAGE_REF IN {scope}
		ORDER BY NAME`
)
