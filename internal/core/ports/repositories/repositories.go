package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Every mirror backend fills each field.
type RepositoryProvider struct {
	CampaignRepo CampaignRepositoryFacade
	DonationRepo DonationRepositoryFacade
	FlagRepo     ReconciliationFlagRepositoryFacade
	TxManager    TransactionManager
}
