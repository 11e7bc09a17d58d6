package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/udelar-dtx/dtx_backend/internal/api/http/handler"
	"github.com/udelar-dtx/dtx_backend/pkg/authorize"
)

type staffHandlers struct {
	roster   *handler.RosterHandler
	patient  *handler.PatientHandler
	session  *handler.SessionHandler
	export   *handler.ExportHandler
	enrollQR *handler.EnrollQRHandler
}

func (r *Router) registerStaffRoutes(
	api fiber.Router,
	h staffHandlers,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	staff := api.Group("/staff", authRequired)

	staff.Get("/roster", requirePerm(authorize.ResourceRoster, authorize.ActionRead), h.roster.Today)

	// Patient registry
	staff.Get("/patients", requirePerm(authorize.ResourcePatient, authorize.ActionManage), h.patient.List)
	staff.Post("/patients", requirePerm(authorize.ResourcePatient, authorize.ActionManage), h.patient.Create)

	p := staff.Group("/patients/:id")
	p.Get("/", requirePerm(authorize.ResourcePatient, authorize.ActionManage), h.patient.Get)
	p.Post("/pin", requirePerm(authorize.ResourcePatient, authorize.ActionManage), h.patient.ResetPIN)
	p.Post("/enroll", requirePerm(authorize.ResourceEnrollment, authorize.ActionManage), h.patient.Enroll)
	p.Get("/enrollment", requirePerm(authorize.ResourceEnrollment, authorize.ActionManage), h.patient.Enrollment)
	p.Get("/history", requirePerm(authorize.ResourceHistory, authorize.ActionRead), h.patient.History)

	// Supervised sessions
	p.Get("/plan", requirePerm(authorize.ResourceSession, authorize.ActionManage), h.session.Plan)
	p.Post("/session", requirePerm(authorize.ResourceSession, authorize.ActionExecute), h.session.Record)
	p.Post("/control-review", requirePerm(authorize.ResourceSession, authorize.ActionExecute), h.session.ReviewControl)
	p.Post("/vagal", requirePerm(authorize.ResourceSession, authorize.ActionExecute), h.session.RecordVagal)

	// Data
	staff.Get("/export.xlsx", requirePerm(authorize.ResourceExport, authorize.ActionExecute), h.export.Workbook)
	staff.Post("/export", requirePerm(authorize.ResourceExport, authorize.ActionExecute), h.export.Publish)

	if h.enrollQR != nil {
		staff.Get("/enroll-qr.png", requirePerm(authorize.ResourceEnrollQR, authorize.ActionRead), h.enrollQR.PNG)
	}
}
