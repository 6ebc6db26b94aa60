package link

// Observer receives link notifications. Methods are called from whichever
// goroutine detects the event; implementations that drive a UI must marshal
// to their own context. OnStateChanged is invoked while the Manager holds its
// lock, so an Observer must not call back into the Manager synchronously.
// OnDataSent is invoked while the stream's write lock is held; calling
// Manager.Write from it deadlocks.
type Observer interface {
	// OnStateChanged reports a lifecycle transition or failure.
	OnStateChanged(description string)
	// OnDataSent reports a successful write, decoded for display.
	OnDataSent(text string)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	StateChanged func(description string)
	DataSent     func(text string)
}

func (o ObserverFuncs) OnStateChanged(description string) {
	if o.StateChanged != nil {
		o.StateChanged(description)
	}
}

func (o ObserverFuncs) OnDataSent(text string) {
	if o.DataSent != nil {
		o.DataSent(text)
	}
}

type nopObserver struct{}

func (nopObserver) OnStateChanged(string) {}
func (nopObserver) OnDataSent(string)     {}
