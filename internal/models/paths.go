package models

import "net/url"

// Browser routes the login and payment flows redirect to.

func OwnerDashboardPath(ownerID string) string {
	return "/OwnerDashboard/" + url.PathEscape(ownerID)
}

func TenantDashboardPath(propertyID, flatNo string) string {
	return "/TenantDashboard/" + url.PathEscape(propertyID) + "/" + url.PathEscape(flatNo)
}

func PaymentSuccessPath(propertyID, flatNo string) string {
	return "/payment-success/" + url.PathEscape(propertyID) + "/" + url.PathEscape(flatNo)
}
