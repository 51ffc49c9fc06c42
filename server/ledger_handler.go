package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/Digital-Creators-Team/lotto-ledger/errors"
	"github.com/Digital-Creators-Team/lotto-ledger/logging"
	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
)

// LedgerHandler serves the ledger, office and draw routes.
//
// Flow: HTTP Request -> LedgerHandler -> lotto.Office / lotto.Ledger
//
// Handlers only translate; every rule lives in the lotto package.
type LedgerHandler struct {
	app    *App
	logger zerolog.Logger
}

// NewLedgerHandler creates a ledger handler
func NewLedgerHandler(app *App) *LedgerHandler {
	return &LedgerHandler{
		app:    app,
		logger: app.logger.With().Str("handler", "ledger").Logger(),
	}
}

// DrawView is the public shape of a conducted draw.
// @Description Conducted draw
type DrawView struct {
	Number         int       `json:"number"`
	WinningNumbers []int     `json:"winning_numbers"`
	TotalBets      int       `json:"total_bets"`
	WinnerCounts   [4]int    `json:"winner_counts"`
	PrizePools     [4]int64  `json:"prize_pools"`
	PrizePerWinner [4]int64  `json:"prize_per_winner"`
	ConductedAt    time.Time `json:"conducted_at"`
}

func newDrawView(d *lotto.Draw) DrawView {
	v := DrawView{
		Number:         d.Number(),
		WinningNumbers: d.WinningNumbers(),
		TotalBets:      d.TotalBets(),
		WinnerCounts:   d.WinnerCounts(),
		PrizePools:     d.Pools(),
		ConductedAt:    d.ConductedAt(),
	}
	for i, t := range lotto.AllTiers {
		v.PrizePerWinner[i] = d.PrizePerWinner(t)
	}
	return v
}

// TicketView is the buyer's copy of an issued ticket.
// @Description Issued ticket
type TicketView struct {
	Number     int     `json:"number"`
	Office     int     `json:"office"`
	Identifier string  `json:"identifier"`
	Bets       [][]int `json:"bets"`
	FirstDraw  int     `json:"first_draw"`
	LastDraw   int     `json:"last_draw"`
	Price      int64   `json:"price"`
	Rejected   int     `json:"rejected_rows"`
}

func newTicketView(t *lotto.Ticket) TicketView {
	return TicketView{
		Number:     t.Number,
		Office:     t.Office,
		Identifier: t.ID.String(),
		Bets:       lo.Map(t.Form.Bets(), func(b lotto.Bet, _ int) []int { return b.Numbers() }),
		FirstDraw:  t.FirstDraw,
		LastDraw:   t.LastDraw,
		Price:      t.Price(),
		Rejected:   t.Form.Rejected(),
	}
}

// WalletView is a player balance.
type WalletView struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
	Display string `json:"display"`
}

// IssueTicketRequest is a filled form. Either Bets or RandomBets is set.
// @Description Ticket purchase payload
type IssueTicketRequest struct {
	Bets       [][]int `json:"bets"`
	RandomBets int     `json:"random_bets"`
	Draws      int     `json:"draws"`
}

// IssueTicketResponse reports the purchase outcome. Ticket is nil when the
// form had no valid bet or the wallet could not cover the price.
type IssueTicketResponse struct {
	Ticket  *TicketView `json:"ticket"`
	Balance int64       `json:"balance"`
}

// RedeemRequest names the ticket to settle.
// @Description Redemption payload
type RedeemRequest struct {
	TicketID string `json:"ticket_id" binding:"required" example:"17-3-000482913-31"`
}

// RedeemResponse reports the settlement.
type RedeemResponse struct {
	lotto.Redemption
	Balance int64 `json:"balance"`
}

// ConductDrawRequest optionally fixes the winning numbers.
// @Description Draw payload
type ConductDrawRequest struct {
	Numbers []int `json:"numbers"`
}

// Ledger godoc
// @Summary      Ledger summary
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  BaseResponse{data=lotto.Summary}
// @Router       /ledger [get]
func (h *LedgerHandler) Ledger(c *gin.Context) {
	OK(c, gin.H{
		"summary": h.app.ledger.Summary(),
		"offices": lo.Map(h.app.ledger.Offices(), func(o *lotto.Office, _ int) lotto.OfficeStats { return o.Stats() }),
	})
}

// ListDraws godoc
// @Summary      List conducted draws
// @Tags         draws
// @Produce      json
// @Success      200  {object}  BaseResponse{data=[]DrawView}
// @Router       /draws [get]
func (h *LedgerHandler) ListDraws(c *gin.Context) {
	OK(c, lo.Map(h.app.ledger.Draws(), func(d *lotto.Draw, _ int) DrawView { return newDrawView(d) }))
}

// GetDraw godoc
// @Summary      Get one draw
// @Tags         draws
// @Produce      json
// @Param        number  path  int  true  "Draw number"
// @Success      200  {object}  BaseResponse{data=DrawView}
// @Failure      404  {object}  ErrorResponse
// @Router       /draws/{number} [get]
func (h *LedgerHandler) GetDraw(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		BadRequest(c, errors.InvalidArgument("draw number must be an integer"))
		return
	}

	draw, err := h.app.ledger.Draw(number)
	if err == nil {
		OK(c, newDrawView(draw))
		return
	}
	if h.app.reports == nil || !errors.Is(err, errors.ErrDrawNotFound) {
		HandleAppError(c, err)
		return
	}

	report, rerr := h.app.reports.GetDraw(c.Request.Context(), number)
	if rerr != nil {
		HandleAppError(c, rerr)
		return
	}
	OK(c, DrawView{
		Number:         report.Number,
		WinningNumbers: report.WinningNumbers,
		TotalBets:      report.TotalBets,
		WinnerCounts:   report.WinnerCounts,
		PrizePools:     report.PrizePools,
		PrizePerWinner: report.PrizePerWinner,
		ConductedAt:    report.Timestamp,
	})
}

// ConductDraw godoc
// @Summary      Conduct the next draw
// @Description  Random numbers unless numbers are supplied. Coordinator role only.
// @Tags         draws
// @Accept       json
// @Produce      json
// @Param        request  body  ConductDrawRequest  false  "Fixed winning numbers"
// @Success      201  {object}  BaseResponse{data=DrawView}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /draws [post]
func (h *LedgerHandler) ConductDraw(c *gin.Context) {
	var req ConductDrawRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, errors.InvalidArgument("invalid request body: %v", err))
			return
		}
	}

	draw, err := h.app.ledger.ConductDraw(c.Request.Context(), req.Numbers...)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	Created(c, newDrawView(draw))
}

// Wallet godoc
// @Summary      Player balance
// @Tags         player
// @Produce      json
// @Success      200  {object}  BaseResponse{data=WalletView}
// @Security     BearerAuth
// @Router       /wallet [get]
func (h *LedgerHandler) Wallet(c *gin.Context) {
	player := mustPlayer(c)
	balance := player.Account.Balance()
	OK(c, WalletView{UserID: player.UserID, Balance: balance, Display: lotto.FormatAmount(balance)})
}

// IssueTicket godoc
// @Summary      Buy a ticket
// @Tags         player
// @Accept       json
// @Produce      json
// @Param        office   path  int                 true  "Office number"
// @Param        request  body  IssueTicketRequest  true  "Form"
// @Success      201  {object}  BaseResponse{data=IssueTicketResponse}
// @Success      200  {object}  BaseResponse{data=IssueTicketResponse}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /offices/{office}/tickets [post]
func (h *LedgerHandler) IssueTicket(c *gin.Context) {
	office, ok := h.office(c)
	if !ok {
		return
	}
	var req IssueTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, errors.InvalidArgument("invalid request body: %v", err))
		return
	}

	ctx := c.Request.Context()
	player := mustPlayer(c)

	var (
		ticket *lotto.Ticket
		err    error
	)
	if req.RandomBets > 0 {
		ticket, err = office.IssueRandom(ctx, req.RandomBets, req.Draws, player.Account)
	} else {
		var form lotto.Form
		form, err = lotto.NewForm(req.Bets, req.Draws)
		if err == nil {
			ticket, err = office.Issue(ctx, form, player.Account)
		}
	}
	if err != nil {
		HandleAppError(c, err)
		return
	}

	resp := IssueTicketResponse{Balance: player.Account.Balance()}
	if ticket == nil {
		OK(c, resp)
		return
	}
	h.save(c, player)
	view := newTicketView(ticket)
	resp.Ticket = &view
	Created(c, resp)
}

// Redeem godoc
// @Summary      Redeem a ticket
// @Description  Pays every conducted draw of the ticket not yet settled to the caller's wallet. The identifier is the claim; it is not bound to the buyer. Repeat calls are safe.
// @Tags         player
// @Accept       json
// @Produce      json
// @Param        office   path  int            true  "Office number"
// @Param        request  body  RedeemRequest  true  "Ticket identifier"
// @Success      200  {object}  BaseResponse{data=RedeemResponse}
// @Failure      422  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /offices/{office}/redemptions [post]
func (h *LedgerHandler) Redeem(c *gin.Context) {
	office, ok := h.office(c)
	if !ok {
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, errors.InvalidArgument("invalid request body: %v", err))
		return
	}
	id, err := lotto.ParseIdentifier(req.TicketID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	player := mustPlayer(c)
	r, err := office.RedeemByID(c.Request.Context(), id, player.Account)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	if r.Paid > 0 {
		h.save(c, player)
	}
	OK(c, RedeemResponse{Redemption: r, Balance: player.Account.Balance()})
}

func (h *LedgerHandler) office(c *gin.Context) (*lotto.Office, bool) {
	number, err := strconv.Atoi(c.Param("office"))
	if err != nil {
		BadRequest(c, errors.InvalidArgument("office number must be an integer"))
		return nil, false
	}
	office, err := h.app.ledger.Office(number)
	if err != nil {
		HandleAppError(c, err)
		return nil, false
	}
	return office, true
}

// save persists the wallet; the ledger change is already committed, so a
// failure is logged rather than returned.
func (h *LedgerHandler) save(c *gin.Context, p *Player) {
	if err := h.app.wallets.Save(c.Request.Context(), p.UserID); err != nil {
		logger := logging.WithUserID(h.logger, p.UserID)
		logger.Error().Err(err).Msg("Failed to persist wallet")
	}
}
