package constants

const (
	ViewDashboard      = "view_dashboard"
	ViewClients        = "view_clients"
	ManageClients      = "manage_clients"
	ManageMasters      = "manage_masters"
	ViewTransactions   = "view_transactions"
	ManageTransactions = "manage_transactions"
	ImportData         = "import_data"
	ViewRequests       = "view_requests"
	CreateRequests     = "create_requests"
	ReviewRequests     = "review_requests"
	ViewOffers         = "view_offers"
	ManageOffers       = "manage_offers"
	UploadDocuments    = "upload_documents"
	ViewReconciliation = "view_reconciliation"
)
