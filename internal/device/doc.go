// Package device provides the high-level client for Samsung Galaxy
// Buds Pro earbuds: a Device facade with one method per supported
// operation, a StatusCache that tracks the earbuds' periodic reports,
// and the outbound request builders underneath both.
//
// Typical use:
//
//	t, err := transport.DialRFCOMM("80:7B:3E:21:79:EA", transport.DefaultChannel)
//	if err != nil { ... }
//	dev := device.NewDevice(t)
//	defer dev.Close()
//
//	dev.Status.WaitFor(func() bool {
//		return dev.Status.MergedExtendedStatus() != nil
//	})
package device
