package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/silicontrail/marketplace-golang/internal/models"
)

//
// --- Support Ticket Handlers ---
//

// CreateTicketInput defines the JSON for POST /api/support/tickets.
type CreateTicketInput struct {
	Subject string  `json:"subject" binding:"required"`
	OrderID *string `json:"orderId"`
}

// CreateTicket opens a support ticket, optionally tied to one of the
// caller's orders.
func (h *Handlers) CreateTicket(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var input CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.OrderID != nil {
		var orderID string
		err := h.DB.QueryRow("SELECT id FROM orders WHERE id = ? AND user_id = ?", *input.OrderID, user.ID).Scan(&orderID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check order"})
			return
		}
	}

	ticket := models.SupportTicket{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		OrderID:   input.OrderID,
		Subject:   input.Subject,
		Status:    models.TicketStatusOpen,
		CreatedAt: time.Now(),
	}
	_, err := h.DB.Exec(`
		INSERT INTO support_tickets (id, user_id, order_id, subject, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ticket.ID, ticket.UserID, ticket.OrderID, ticket.Subject, ticket.Status, ticket.CreatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ticket"})
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// GetMyTickets is the handler for GET /api/support/tickets.
func (h *Handlers) GetMyTickets(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT id, user_id, order_id, subject, status, created_at
		FROM support_tickets
		WHERE user_id = ?
		ORDER BY created_at DESC`, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tickets"})
		return
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan tickets"})
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// GetAllTickets is the admin handler for GET /api/admin/tickets. An
// optional ?status= filter narrows the list.
func (h *Handlers) GetAllTickets(c *gin.Context) {
	status := c.Query("status")

	var rows *sql.Rows
	var err error
	if status != "" {
		if !models.IsValidTicketStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown ticket status"})
			return
		}
		rows, err = h.DB.Query(`
			SELECT id, user_id, order_id, subject, status, created_at
			FROM support_tickets
			WHERE status = ?
			ORDER BY created_at DESC`, status)
	} else {
		rows, err = h.DB.Query(`
			SELECT id, user_id, order_id, subject, status, created_at
			FROM support_tickets
			ORDER BY created_at DESC`)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tickets"})
		return
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan tickets"})
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func scanTickets(rows *sql.Rows) ([]models.SupportTicket, error) {
	tickets := []models.SupportTicket{}
	for rows.Next() {
		var t models.SupportTicket
		if err := rows.Scan(&t.ID, &t.UserID, &t.OrderID, &t.Subject, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// UpdateTicketStatusInput defines the JSON for PATCH /api/admin/tickets/:id.
type UpdateTicketStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTicketStatus lets an admin move a ticket through its lifecycle.
func (h *Handlers) UpdateTicketStatus(c *gin.Context) {
	ticketID := c.Param("id")

	var input UpdateTicketStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidTicketStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown ticket status"})
		return
	}

	result, err := h.DB.Exec("UPDATE support_tickets SET status = ? WHERE id = ?", input.Status, ticketID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ticket"})
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ticket updated", "status": input.Status})
}
