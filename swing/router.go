package swing

import (
	"fmt"
	"time"

	"github.com/quantedge/swingcore/executor"
	"github.com/quantedge/swingcore/logger"
	"github.com/quantedge/swingcore/risk"
	"github.com/quantedge/swingcore/types"
)

// EventRouter is the strategy's single inbound/outbound boundary. Inbound,
// it keeps the contract and position/profit snapshots current and forwards
// validated events to a SwingStateMachine. Outbound, it implements
// executor.Gateway itself, interposed in front of the real broker gateway,
// so every order the machine submits is price-validated, position-capped and
// cash-reduced before it reaches the broker. Grounded on
// original_source/strategy.py's Strategy base class (on_tick/
// on_buy_success/on_buy_fail/on_sell_success/on_sell_fail/on_trade_update/
// on_order_status/on_profit_changed, and the cash-reduction loop ahead of
// on_buy plus the position check ahead of on_sell).
type EventRouter struct {
	log      logger.Logger
	contract *Contract
	inner    executor.Gateway
	machine  *SwingStateMachine

	availableCash float64
	positionLong  float64
	positionShort float64
}

// NewEventRouter wires a SwingStateMachine behind a validating event and
// order boundary. The returned router satisfies executor.Gateway and should
// be passed as the gateway argument to NewSwingStateMachine.
func NewEventRouter(log logger.Logger, contract *Contract, inner executor.Gateway, availableCash float64) *EventRouter {
	return &EventRouter{log: log, contract: contract, inner: inner, availableCash: availableCash}
}

// Attach binds the router to the state machine it feeds. Call once, after
// constructing the SwingStateMachine with this router as its gateway.
func (r *EventRouter) Attach(machine *SwingStateMachine) { r.machine = machine }

// SetAvailableCash refreshes the cash figure used to cap order sizing.
func (r *EventRouter) SetAvailableCash(cash float64) { r.availableCash = cash }

// OnMarketData applies a tick to the contract and, if it parses, advances
// the state machine.
func (r *EventRouter) OnMarketData(md types.MarketData, now time.Time) {
	if err := r.contract.Update(md); err != nil {
		if r.log != nil {
			r.log.Error("market data rejected", logger.Err(err))
		}
		return
	}
	r.machine.OnTick(now)
}

// OnTrade folds a fill into the state machine, dropping a trade whose
// identifying fields are missing rather than forwarding a zero-valued fill,
// mirroring original_source/strategy.py:on_trade_update's KeyError guard.
func (r *EventRouter) OnTrade(trade types.Trade) {
	if trade.OrderID <= 0 || trade.Qty <= 0 {
		err := NewError(ErrMalformedEvent, fmt.Sprintf("trade event missing order id or qty: %+v", trade))
		if r.log != nil {
			r.log.Error("trade event dropped", logger.Err(err))
		}
		return
	}
	r.machine.OnTradeUpdate(trade.OrderID, trade.Price, trade.Qty)
}

// OnOrderStatus normalizes a raw broker status and, if it maps to a status
// the core acts on, routes it to the state machine. Statuses the core
// leaves untouched (open/accepted/cancel_submitted/partial_closed/
// no_cancel) are silently dropped, mirroring the original event handler.
func (r *EventRouter) OnOrderStatus(event types.OrderStatusEvent) {
	status, ok := types.NormalizeStatus(event.Status)
	if !ok {
		return
	}
	r.machine.OnOrderStatus(event.OrderID, status)
}

// OnProfitChanged republishes the portfolio collaborator's latest
// position/NLV/gain snapshot into the machine and keeps the router's own
// copy current for the position check ahead of outbound Sell intents.
func (r *EventRouter) OnProfitChanged(nlv, gain, positionLong, positionShort float64) {
	r.positionLong, r.positionShort = positionLong, positionShort
	r.machine.UpdatePosition(positionLong, positionShort)
	r.machine.UpdateProfit(nlv, gain)
}

// positionAvailable returns the currently open quantity on side, the
// ceiling a Sell intent on that side cannot exceed.
func (r *EventRouter) positionAvailable(side types.Side) float64 {
	if side == types.Short {
		return r.positionShort
	}
	return r.positionLong
}

// validate runs the outbound checks original_source/strategy.py performs,
// keyed on the event type exactly as the original is: on_buy runs the
// price-limit check then the cash-reduction loop; on_sell runs the
// price-limit check then the available-position check. Neither event type
// runs the other's second check. err is a *Error tagged with the ErrKind of
// whichever check failed, or nil once in.Qty has been reduced/restored to
// the quantity that should actually be submitted.
func (r *EventRouter) validate(in types.OrderIntent) (types.OrderIntent, error) {
	if !r.contract.ValidatePrice(in.Price) {
		err := NewError(ErrPriceOutOfLimit, fmt.Sprintf(
			"tag=%s price=%v outside [%v,%v]", in.Tag, in.Price, r.contract.LowLimit, r.contract.HighLimit))
		if r.log != nil {
			r.log.Warn("order intent price outside exchange limits", logger.Err(err))
		}
		return in, err
	}

	if in.Action == types.Sell {
		available := r.positionAvailable(in.Side)
		if in.Qty > available {
			err := NewError(ErrInsufficientPosition, fmt.Sprintf(
				"tag=%s qty=%v exceeds open %s position %v", in.Tag, in.Qty, in.Side, available))
			if r.log != nil {
				r.log.Warn("order intent exceeds open position", logger.Err(err))
			}
			return in, err
		}
		return in, nil
	}

	if err := r.contract.CheckMarginFee(in.Side); err != nil {
		if r.log != nil {
			r.log.Error("margin fee check failed", logger.String("tag", in.Tag), logger.Err(err))
		}
		return in, err
	}
	fee := r.contract.MarginFee[in.Side]
	qty, reduced, err := risk.ReduceForAvailableCash(fee, r.contract.Unit, in.Price, in.Qty, r.availableCash)
	if err != nil {
		return in, err
	}
	if !reduced {
		// Cash can't afford even one unit; the original restores the
		// unreduced qty and submits anyway, leaving the broker's own
		// accept/reject as the final word.
		cashErr := NewError(ErrInsufficientCash, fmt.Sprintf(
			"tag=%s qty=%v unaffordable at price=%v, submitting unreduced", in.Tag, in.Qty, in.Price))
		if r.log != nil {
			r.log.Warn("available cash cannot afford requested qty", logger.Err(cashErr))
		}
	}
	in.Qty = qty
	return in, nil
}

// Buy price-validates and cash-reduces each intent before forwarding the
// survivors to the wrapped broker gateway.
func (r *EventRouter) Buy(intents []types.OrderIntent) types.BuySellResult {
	return r.dispatch(intents, r.inner.Buy)
}

// Sell price-validates and position-caps each intent before forwarding the
// survivors to the wrapped broker gateway.
func (r *EventRouter) Sell(intents []types.OrderIntent) types.BuySellResult {
	return r.dispatch(intents, r.inner.Sell)
}

func (r *EventRouter) dispatch(intents []types.OrderIntent, send func([]types.OrderIntent) types.BuySellResult) types.BuySellResult {
	var valid []types.OrderIntent
	for _, in := range intents {
		if validIntent, err := r.validate(in); err == nil {
			valid = append(valid, validIntent)
		}
	}
	if len(valid) == 0 {
		return types.BuySellResult{}
	}
	result := send(valid)
	if !result.Accepted {
		err := NewError(ErrBrokerRefusal, "broker rejected order")
		if r.log != nil {
			r.log.Warn("broker refused order", logger.Err(err))
		}
	}
	return result
}

// Cancel forwards unchanged to the wrapped broker gateway.
func (r *EventRouter) Cancel(req types.CancelRequest) error {
	return r.inner.Cancel(req)
}
