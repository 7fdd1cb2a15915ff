package workflows

// NewDefaultLibrary registers every named workflow Definition.
func NewDefaultLibrary() (*Library, error) {
	lib := NewLibrary()
	defs := []*Definition{
		NewValidateUserDefinition(),
		NewCheckPermissionsDefinition(),
		NewGetUserProfileDefinition(),
		NewUserOnboardingDefinition(),
		NewTenantSwitchDefinition(),
		NewTenantProvisionMigrateDefinition(),
		NewFileUploadPipelineDefinition(),
		NewModuleInstallDefinition(),
		NewLicenseProvisionDefinition(),
		NewLicenseQuotaEnforcementDefinition(),
		NewLicenseRenewalDefinition(),
		NewGDPRExportDefinition(),
		NewGDPRDeletionDefinition(),
		NewBulkOperationDefinition(),
		NewDataRetentionDefinition(),
		NewAIRequestPipelineDefinition(),
	}
	for _, def := range defs {
		if err := lib.Register(def); err != nil {
			return nil, err
		}
	}
	return lib, nil
}
