package transfer

// Top-level document keys.
const (
	KeyProjectVersion   = "projectVersion"
	KeyZones            = "zones"
	KeyZoneZone         = "zone_zone"
	KeyDevices          = "devices"
	KeyDeviceDevice     = "device_device"
	KeyCFNodes          = "cfnodes"
	KeyCFNodeCFNode     = "cfnode_cfnode"
	KeyServiceInstances = "serviceInstances"
)

// Scalar fields of exported records.
const (
	KeyID               = "id"
	KeyName             = "name"
	KeyNotes            = "notes"
	KeyUID              = "uid"
	KeyLastUpdate       = "lastUpdate"
	KeyLocked           = "locked"
	KeyVendor           = "vendor"
	KeyVersion          = "version"
	KeyModelNumber      = "modelNumber"
	KeyTroubleshooting  = "troubleshooting"
	KeyDeviceItemsProps = "deviceItemsProps"
	KeyProtocolVerRange = "protocolVerRange"
	KeyTemplate         = "template"
	KeyHidden           = "hidden"
	KeyEquipment        = "equipment"
	KeyCertified        = "certified"
	KeyEnabled          = "enabled"
	KeyConfig           = "config"
	KeyProperties       = "properties"

	// Fields of a property record.
	KeyKey   = "key"
	KeyValue = "value"
	KeyType  = "type"
)

// Lookup block fields. They carry natural keys (or document IDs) of the
// entities a record references and are never stored as attributes.
const (
	KeyMasterTemplateName        = "_masterTemplateName_"
	KeyMasterTemplateVendor      = "_masterTemplateVendor_"
	KeyMasterTemplateModelNumber = "_masterTemplateModelNumber_"
	KeyMasterTemplateVersion     = "_masterTemplateVersion_"
	KeyImportTemplateID          = "_importTemplateId_"
	KeyLastUpdateUserEmail       = "_lastUpdateUserEmail_"
	KeyZoneID                    = "_zoneId_"
	KeyDeviceTypes               = "_deviceTypes_"
	KeyDeviceTypeName            = "_deviceTypeName_"
	KeyDeviceCategoryName        = "_deviceCategoryName_"
	KeyProtocolAdapterName       = "_protocolAdapterName_"
	KeyProtocolAdapterVersion    = "_protocolAdapterVersion_"
	KeyDeviceClasses             = "_deviceClasses_"

	KeyProviderName     = "_providerName_"
	KeyProviderTypeName = "_providerTypeName_"
	KeyProjectVersionID = "_projectVersionId_"

	KeyServiceDefinitionName    = "_serviceDefinitionName_"
	KeyServiceDefinitionUID     = "_serviceDefinitionUid_"
	KeyServiceDefinitionVendor  = "_serviceDefinitionVendor_"
	KeyServiceDefinitionVersion = "_serviceDefinitionVersion_"
	KeyDeviceIDs                = "_deviceIds_"

	KeyProjectName     = "_projectName_"
	KeyCompanyName     = "_companyName_"
	KeyImportProjectID = "_importProjectId_"
)
