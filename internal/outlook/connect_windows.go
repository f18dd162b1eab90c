//go:build windows

package outlook

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// ProgID is the COM class Outlook registers for automation.
const ProgID = "Outlook.Application"

var errCOMStopped = errors.New("COM worker stopped")

// COMConnector attaches to the running Outlook instance, starting one if
// needed. Every automation call, including calls on objects it returns, runs
// on a single OS thread initialised for apartment-threaded COM.
type COMConnector struct {
	calls   chan func()
	done    chan struct{}
	stop    sync.Once
	initErr error
}

// NewCOMConnector starts the COM worker thread.
func NewCOMConnector() *COMConnector {
	c := &COMConnector{
		calls: make(chan func()),
		done:  make(chan struct{}),
	}
	ready := make(chan struct{})
	go c.loop(ready)
	<-ready
	return c
}

func (c *COMConnector) loop(ready chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		// S_FALSE: COM was already initialised on this thread.
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != 1 {
			c.initErr = err
			close(ready)
			return
		}
	}
	defer ole.CoUninitialize()
	close(ready)

	for {
		select {
		case fn := <-c.calls:
			fn()
		case <-c.done:
			return
		}
	}
}

// Close stops the worker thread. Objects obtained from the connector must
// not be used afterwards.
func (c *COMConnector) Close() {
	c.stop.Do(func() { close(c.done) })
}

func (c *COMConnector) do(ctx context.Context, fn func() error) error {
	if c.initErr != nil {
		return fmt.Errorf("initialise COM: %w", c.initErr)
	}
	errc := make(chan error, 1)
	call := func() {
		defer func() {
			if r := recover(); r != nil {
				errc <- fmt.Errorf("COM call panicked: %v", r)
			}
		}()
		errc <- fn()
	}
	select {
	case c.calls <- call:
	case <-c.done:
		return errCOMStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-errc
}

// Connect returns the Outlook.Application object.
func (c *COMConnector) Connect(ctx context.Context) (Object, error) {
	var disp *ole.IDispatch
	err := c.do(ctx, func() error {
		unknown, err := oleutil.GetActiveObject(ProgID)
		if err != nil {
			if unknown, err = oleutil.CreateObject(ProgID); err != nil {
				return fmt.Errorf("start %s: %w", ProgID, err)
			}
		}
		defer unknown.Release()
		disp, err = unknown.QueryInterface(ole.IID_IDispatch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &comObject{c: c, disp: disp}, nil
}

type comObject struct {
	c        *COMConnector
	disp     *ole.IDispatch
	released atomic.Bool
}

func (o *comObject) Get(name string, args ...any) (any, error) {
	var out any
	err := o.c.do(context.Background(), func() error {
		v, err := oleutil.GetProperty(o.disp, name, o.c.oleArgs(args)...)
		if err != nil {
			return err
		}
		out = o.c.fromVariant(v)
		return nil
	})
	return out, err
}

func (o *comObject) Set(name string, value any) error {
	return o.c.do(context.Background(), func() error {
		v, err := oleutil.PutProperty(o.disp, name, o.c.oleArgs([]any{value})...)
		if err == nil {
			_ = v.Clear()
		}
		return err
	})
}

func (o *comObject) Call(method string, args ...any) (any, error) {
	var out any
	err := o.c.do(context.Background(), func() error {
		v, err := oleutil.CallMethod(o.disp, method, o.c.oleArgs(args)...)
		if err != nil {
			return err
		}
		out = o.c.fromVariant(v)
		return nil
	})
	return out, err
}

func (o *comObject) Release() {
	if o.released.Swap(true) {
		return
	}
	_ = o.c.do(context.Background(), func() error {
		o.disp.Release()
		return nil
	})
}

func (c *COMConnector) oleArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if obj, ok := a.(*comObject); ok {
			out[i] = obj.disp
			continue
		}
		out[i] = a
	}
	return out
}

// fromVariant converts a result VARIANT. Dispatch results become Objects
// owning the reference; everything else is copied and the VARIANT cleared.
func (c *COMConnector) fromVariant(v *ole.VARIANT) any {
	if v == nil {
		return nil
	}
	switch {
	case v.VT == ole.VT_DISPATCH:
		disp := v.ToIDispatch()
		if disp == nil {
			return nil
		}
		return &comObject{c: c, disp: disp}
	case v.VT&ole.VT_ARRAY != 0:
		defer func() { _ = v.Clear() }()
		arr := v.ToArray()
		if arr == nil {
			return nil
		}
		values := arr.ToValueArray()
		strs := make([]string, 0, len(values))
		for _, val := range values {
			s, ok := val.(string)
			if !ok {
				return values
			}
			strs = append(strs, s)
		}
		return strs
	case v.VT == ole.VT_EMPTY || v.VT == ole.VT_NULL:
		return nil
	}
	defer func() { _ = v.Clear() }()
	return v.Value()
}
