package batch

const (
	insertOperation = `
		INSERT INTO OPERATION (PACKAGE_REF, NAME, DESCRIPTION) VALUES (?, ?, ?)
		ON CONFLICT (PACKAGE_REF, NAME) DO NOTHING
	`
	insertRole = `
		INSERT INTO ROLE (PACKAGE_REF, NAME, DESCRIPTION, LEVEL) VALUES (?, ?, ?, ?)
		ON CONFLICT (PACKAGE_REF, NAME) DO NOTHING
	`
	insertModifier = `
		INSERT INTO ACCESS_MODIFIER (PACKAGE_REF, NAME, DESCRIPTION) VALUES (?, ?, ?)
		ON CONFLICT (PACKAGE_REF, NAME) DO NOTHING
	`
	insertTag = `
		INSERT INTO TAG (PACKAGE_REF, CLUSTER_REF, NAME, DESCRIPTION) VALUES (?, ?, ?, ?)
	`
	querySpec  = `SELECT SPEC_ID FROM SPEC WHERE PACKAGE_REF = ? AND CODE = ?`
	insertSpec = `
		INSERT INTO SPEC (PACKAGE_REF, CODE, DESCRIPTION, CERTIFIABLE) VALUES (?, ?, ?, ?)
		RETURNING SPEC_ID
	`
	insertDomain = `
		INSERT INTO DOMAIN (PACKAGE_REF, NAME, LATEST_SPEC_REF) VALUES (?, ?, ?)
		ON CONFLICT (PACKAGE_REF, NAME) DO NOTHING
	`

	insertAccess = `
		INSERT INTO ACCESS (PACKAGE_REF, OPERATION_NAME, OPERATION_REF, ROLE_NAME, ROLE_REF,
		                    ACCESS_MODIFIER_NAME, ACCESS_MODIFIER_REF)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ACCESS_ID
	`
	insertAttributeAccess = `INSERT INTO ATTRIBUTE_ACCESS (ATTRIBUTE_REF, ACCESS_REF) VALUES (?, ?)`
	insertCommandAccess   = `INSERT INTO COMMAND_ACCESS (COMMAND_REF, ACCESS_REF) VALUES (?, ?)`
	insertEventAccess     = `INSERT INTO EVENT_ACCESS (EVENT_REF, ACCESS_REF) VALUES (?, ?)`
	insertDefaultAccess   = `INSERT INTO DEFAULT_ACCESS (PACKAGE_REF, ENTITY_TYPE, ACCESS_REF) VALUES (?, ?, ?)`

	insertDeviceType = `
		INSERT INTO DEVICE_TYPE (PACKAGE_REF, DOMAIN, CODE, PROFILE_ID, NAME, DESCRIPTION, DEVICE_CLASS, SCOPE, SUPERSET)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING DEVICE_TYPE_ID
	`
	insertDeviceTypeCluster = `
		INSERT INTO DEVICE_TYPE_CLUSTER (DEVICE_TYPE_REF, CLUSTER_NAME, INCLUDE_CLIENT, INCLUDE_SERVER, LOCK_CLIENT, LOCK_SERVER)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING DEVICE_TYPE_CLUSTER_ID
	`
	insertDeviceTypeAttribute = `INSERT INTO DEVICE_TYPE_ATTRIBUTE (DEVICE_TYPE_CLUSTER_REF, ATTRIBUTE_NAME) VALUES (?, ?)`
	insertDeviceTypeCommand   = `INSERT INTO DEVICE_TYPE_COMMAND (DEVICE_TYPE_CLUSTER_REF, COMMAND_NAME) VALUES (?, ?)`

	insertCluster = `
		INSERT INTO CLUSTER (PACKAGE_REF, DOMAIN_NAME, CODE, MANUFACTURER_CODE, NAME, DESCRIPTION, DEFINE,
			IS_SINGLETON, REVISION, INTRODUCED_IN, REMOVED_IN)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING CLUSTER_ID
	`
	insertCommand = `
		INSERT INTO COMMAND (PACKAGE_REF, CLUSTER_REF, CODE, MANUFACTURER_CODE, NAME, DESCRIPTION, SOURCE,
			IS_OPTIONAL, MUST_USE_TIMED_INVOKE, IS_FABRIC_SCOPED, IS_DEFAULT_RESPONSE_ENABLED, INTRODUCED_IN, RESPONSE_NAME)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING COMMAND_ID
	`
	insertCommandArg = `
		INSERT INTO COMMAND_ARG (COMMAND_REF, FIELD_IDENTIFIER, NAME, TYPE, MIN, MAX, MAX_LENGTH, IS_ARRAY,
			PRESENT_IF, IS_NULLABLE, IS_OPTIONAL, COUNT_ARG, DEFAULT_VALUE, INTRODUCED_IN)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	insertEvent = `
		INSERT INTO EVENT (PACKAGE_REF, CLUSTER_REF, CODE, MANUFACTURER_CODE, NAME, DESCRIPTION, SIDE, PRIORITY,
			IS_OPTIONAL, IS_FABRIC_SENSITIVE)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING EVENT_ID
	`
	insertEventField = `
		INSERT INTO EVENT_FIELD (EVENT_REF, FIELD_IDENTIFIER, NAME, TYPE, IS_ARRAY, IS_NULLABLE, IS_OPTIONAL, INTRODUCED_IN)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	insertAttribute = `
		INSERT INTO ATTRIBUTE (PACKAGE_REF, CLUSTER_REF, CODE, MANUFACTURER_CODE, NAME, TYPE, SIDE, DEFINE,
			MIN, MAX, MIN_LENGTH, MAX_LENGTH, REPORT_MIN_INTERVAL, REPORT_MAX_INTERVAL, REPORTABLE_CHANGE,
			REPORTABLE_CHANGE_LENGTH, IS_WRITABLE, IS_READABLE, DEFAULT_VALUE, IS_OPTIONAL, REPORTING_POLICY,
			STORAGE_POLICY, IS_SCENE_REQUIRED, IS_NULLABLE, ARRAY_TYPE, MUST_USE_TIMED_WRITE, IS_CHANGE_OMITTED,
			PERSISTENCE, INTRODUCED_IN)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ATTRIBUTE_ID
	`

	insertDataType = `
		INSERT INTO DATA_TYPE (PACKAGE_REF, NAME, DESCRIPTION, DISCRIMINATOR_REF) VALUES (?, ?, ?, ?)
		RETURNING DATA_TYPE_ID
	`
	insertDataTypeCluster = `INSERT INTO DATA_TYPE_CLUSTER (DATA_TYPE_REF, CLUSTER_CODE) VALUES (?, ?)`
	insertNumberType      = `INSERT INTO NUMBER_TYPE (DATA_TYPE_REF, SIZE, IS_SIGNED) VALUES (?, ?, ?)`
	insertStringType      = `INSERT INTO STRING_TYPE (DATA_TYPE_REF, IS_LONG, SIZE, IS_CHAR) VALUES (?, ?, ?, ?)`
	insertEnumType        = `INSERT INTO ENUM_TYPE (DATA_TYPE_REF, SIZE) VALUES (?, ?)`
	insertBitmapType      = `INSERT INTO BITMAP_TYPE (DATA_TYPE_REF, SIZE) VALUES (?, ?)`
	insertStructType      = `INSERT INTO STRUCT_TYPE (DATA_TYPE_REF, SIZE, IS_FABRIC_SCOPED) VALUES (?, ?, ?)`
	insertEnumItem        = `
		INSERT INTO ENUM_ITEM (ENUM_REF, NAME, VALUE, FIELD_IDENTIFIER) VALUES (?, ?, ?, ?)
	`
	insertBitmapField = `
		INSERT INTO BITMAP_FIELD (BITMAP_REF, NAME, MASK, TYPE, FIELD_IDENTIFIER) VALUES (?, ?, ?, ?, ?)
	`
	insertStructItem = `
		INSERT INTO STRUCT_ITEM (STRUCT_REF, FIELD_IDENTIFIER, NAME, TYPE, MAX_LENGTH, IS_WRITABLE, IS_ARRAY,
			IS_ENUM, IS_NULLABLE, IS_OPTIONAL, IS_FABRIC_SENSITIVE)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	insertAtomic = `
		INSERT INTO ATOMIC (PACKAGE_REF, NAME, DESCRIPTION, ATOMIC_IDENTIFIER, ATOMIC_SIZE, IS_DISCRETE,
			IS_STRING, IS_LONG, IS_CHAR, IS_SIGNED)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertGlobalAttributeDefault = `
		INSERT INTO GLOBAL_ATTRIBUTE_DEFAULT (PACKAGE_REF, CLUSTER_REF, ATTRIBUTE_REF, DEFAULT_VALUE)
		VALUES (?, ?, ?, ?)
		RETURNING GLOBAL_ATTRIBUTE_DEFAULT_ID
	`
	insertGlobalAttributeBit = `
		INSERT INTO GLOBAL_ATTRIBUTE_BIT (GLOBAL_ATTRIBUTE_DEFAULT_REF, FEATURE_BIT, VALUE, TAG_REF)
		VALUES (?, ?, ?, ?)
	`
)
