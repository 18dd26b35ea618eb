package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"interviewdesk/internal/domain"
	"interviewdesk/internal/service/booking"
)

type slotsQuery struct {
	Date string `form:"date" binding:"required,isodate"`
}

func (s *Server) getAvailableSlots(c *gin.Context) {
	var q slotsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.AbortWithStatusJSON(nethttp.StatusBadRequest, errorBody(bindingMessage(err)))
		return
	}

	day, err := s.svc.Slots.Day(c.Request.Context(), q.Date)
	if err != nil {
		s.writeError(c, err)
		return
	}

	slots := day.Slots
	if slots == nil {
		slots = []domain.Slot{}
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"success": true,
		"date":    day.Date,
		"slots":   slots,
	})
}

type createAppointmentRequest struct {
	UserID    string `json:"userId" binding:"required"`
	Date      string `json:"date" binding:"required,isodate"`
	StartTime string `json:"startTime" binding:"required,hhmm"`
	EndTime   string `json:"endTime" binding:"required,hhmm"`
}

func (s *Server) createAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(nethttp.StatusBadRequest, errorBody(bindingMessage(err)))
		return
	}

	b, err := s.svc.Bookings.Book(c.Request.Context(), booking.BookInput{
		CandidateExternalID: req.UserID,
		Date:                req.Date,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	msg := "予約が完了しました"
	if b.State == booking.StateDoneWithoutCalendarEvent {
		msg = "予約は完了しましたが、カレンダーへの登録に失敗しました"
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"success":           true,
		"appointmentId":     b.AppointmentID,
		"recordId":          b.RecordRef,
		"calendarEventId":   b.CalendarEventRef,
		"calendarEventLink": b.CalendarEventLink,
		"jobseekerName":     b.CandidateName,
		"state":             b.State,
		"linked":            b.Linked,
		"message":           msg,
	})
}

type updateAppointmentRequest struct {
	EventID     string  `json:"eventId" binding:"required"`
	Date        string  `json:"date" binding:"omitempty,isodate"`
	StartTime   string  `json:"startTime" binding:"omitempty,hhmm"`
	EndTime     string  `json:"endTime" binding:"omitempty,hhmm"`
	Summary     *string `json:"summary"`
	Description *string `json:"description"`
}

func (s *Server) updateAppointment(c *gin.Context) {
	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(nethttp.StatusBadRequest, errorBody(bindingMessage(err)))
		return
	}

	res, err := s.svc.Updates.Update(c.Request.Context(), booking.UpdateInput{
		EventID:     req.EventID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Summary:     req.Summary,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"success":      true,
		"eventId":      res.EventID,
		"htmlLink":     res.HTMLLink,
		"summary":      res.Summary,
		"description":  res.Description,
		"date":         res.Date,
		"startTime":    res.StartTime,
		"endTime":      res.EndTime,
		"recordSynced": res.RecordSynced,
	})
}

type registerRequest struct {
	LineUserID string            `json:"lineUserId" binding:"required"`
	Name       string            `json:"name" binding:"required"`
	Profile    map[string]string `json:"profile"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(nethttp.StatusBadRequest, errorBody(bindingMessage(err)))
		return
	}

	reg, err := s.svc.Register.Register(c.Request.Context(), booking.RegisterInput{
		ExternalID: req.LineUserID,
		Name:       req.Name,
		Profile:    req.Profile,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"success":      true,
		"id":           reg.RecordRef,
		"jobseeker_id": reg.CandidateID,
		"message":      "登録が完了しました",
	})
}

type appointmentResponse struct {
	ID                  string  `json:"id"`
	AppointmentID       string  `json:"appointmentId"`
	CandidateRef        string  `json:"candidateRef,omitempty"`
	CandidateExternalID string  `json:"userId"`
	Date                string  `json:"date"`
	StartTime           string  `json:"startTime"`
	EndTime             string  `json:"endTime"`
	CalendarEventID     *string `json:"calendarEventId"`
	CalendarEventLink   *string `json:"calendarEventLink"`
}

func (s *Server) getAppointment(c *gin.Context) {
	appt, err := s.svc.Bookings.Appointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(nethttp.StatusOK, gin.H{
		"success": true,
		"appointment": appointmentResponse{
			ID:                  appt.ID,
			AppointmentID:       appt.HumanID,
			CandidateRef:        appt.CandidateRef,
			CandidateExternalID: appt.CandidateExternalID,
			Date:                appt.Date,
			StartTime:           appt.Start,
			EndTime:             appt.End,
			CalendarEventID:     appt.CalendarEventID,
			CalendarEventLink:   appt.CalendarEventLink,
		},
	})
}
