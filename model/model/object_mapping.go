package model

import (
	"time"
)

// ObjectMapping is an interface for object_mappings table. One row per
// (company, prefix): translates a scanned id prefix into the salesforce
// object and name field to match against.
type ObjectMapping struct {
	CompanyID  string    `gorm:"primary_key:true;auto_increment:false" json:"company_id"`
	Prefix     string    `gorm:"primary_key:true;auto_increment:false" json:"prefix"`
	ObjectName string    `gorm:"not null" json:"object_name"`
	NameField  string    `gorm:"not null" json:"name_field"`
	Active     *bool     `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultObjectMappings are seeded for every company on integration setup.
// Admins can edit or deactivate them afterwards.
var DefaultObjectMappings = []ObjectMapping{
	{Prefix: "INV", ObjectName: "Invoice__c", NameField: "Name"},
	{Prefix: "PO", ObjectName: "Purchase_Order__c", NameField: "Name"},
	{Prefix: "WO", ObjectName: "WorkOrder", NameField: "WorkOrderNumber"},
	{Prefix: "SO", ObjectName: "Order", NameField: "OrderNumber"},
	{Prefix: "ACC", ObjectName: "Account", NameField: "Name"},
}

// GetMappingByPrefix returns the active mapping for the prefix or nil when
// the prefix is not configured for the company.
func GetMappingByPrefix(mappings []ObjectMapping, prefix string) *ObjectMapping {
	for i := range mappings {
		if mappings[i].Prefix != prefix {
			continue
		}

		if mappings[i].Active != nil && !*mappings[i].Active {
			continue
		}

		return &mappings[i]
	}

	return nil
}
