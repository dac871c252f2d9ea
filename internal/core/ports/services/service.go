package services

// ServiceContainer holds instances of all the application services.
// Handlers and the CLI reach functionality through it.
type ServiceContainer struct {
	Campaign   CampaignSvcFacade
	Reconciler ReconcilerSvc
}
