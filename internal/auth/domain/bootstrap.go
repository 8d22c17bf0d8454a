package domain

type BootstrapData struct {
	AdminEmail       string
	AdminDisplayName string
	AdminPassword    string
}
