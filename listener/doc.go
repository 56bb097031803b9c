// Package listener ties subscription lifecycles to a reusable scope.
//
// A Subscriber registers whatever it subscribes to in the scope it is
// handed; the Listener decides when that happens:
//
//	type hud struct{ bus *Bus }
//
//	func (h *hud) OnSubscribe(s *scope.Scope) error {
//	    scope.Attach(s, h.bus.On("damage", h.flash))
//	    scope.Attach(s, h.bus.On("heal", h.flash))
//	    return nil
//	}
//
//	l := listener.New(&hud{bus}, listener.DefaultOptions())
//	l.Bind()    // subscribes
//	l.Disable() // drains: both handlers released
//	l.Enable()  // subscribes again into the same scope
//
// Release unbinds without draining, matching hosts that tear down bindings
// separately from subscriptions.
package listener
