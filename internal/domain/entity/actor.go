package entity

import "github.com/google/uuid"

// Capability is something an actor may be allowed to do
type Capability string

const (
	CapabilityBookAppointment      Capability = "appointment.book"
	CapabilityApproveAppointment   Capability = "appointment.approve"
	CapabilityRejectAppointment    Capability = "appointment.reject"
	CapabilityCancelAnyAppointment Capability = "appointment.cancel_any"
	CapabilityCancelOwnAppointment Capability = "appointment.cancel_own"
	CapabilityCompleteAppointment  Capability = "appointment.complete"
	CapabilityViewAllAppointments  Capability = "appointment.view_all"
	CapabilityEditEmr              Capability = "emr.edit"
	CapabilityViewAllEmr           Capability = "emr.view_all"
	CapabilityManageTestResults    Capability = "test_result.manage"
	CapabilityExportBillings       Capability = "billing.export"
	CapabilityViewAuditLogs        Capability = "audit_log.view"
)

var roleCapabilities = map[string][]Capability{
	RoleAdmin: {
		CapabilityApproveAppointment,
		CapabilityRejectAppointment,
		CapabilityCancelAnyAppointment,
		CapabilityCompleteAppointment,
		CapabilityViewAllAppointments,
		CapabilityEditEmr,
		CapabilityViewAllEmr,
		CapabilityManageTestResults,
		CapabilityExportBillings,
		CapabilityViewAuditLogs,
	},
	RoleDoctor: {
		CapabilityCancelAnyAppointment,
		CapabilityCompleteAppointment,
		CapabilityViewAllAppointments,
		CapabilityEditEmr,
		CapabilityViewAllEmr,
		CapabilityManageTestResults,
	},
	RolePatient: {
		CapabilityBookAppointment,
		CapabilityCancelOwnAppointment,
	},
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// Can reports whether the actor's role grants c
func (a Actor) Can(c Capability) bool {
	for _, granted := range roleCapabilities[a.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

func (a Actor) IsPatient() bool {
	return a.Role == RolePatient
}
