// Package pipeline drives a complete build.
//
// A run moves through a fixed sequence of states:
//
//	clean → acquire → build-dependency → build-product → package → report
//
// Which states execute is decided up front by [NewPlan], which merges the
// user's skip flags with the routing decision for the target and host
// platforms. Skips requested by routing cannot be overridden. The first
// failing state aborts the run; nothing is rolled back.
//
// Each state delegates to its stage package (source, openssl, openvpn,
// pack). External commands go through the [runner.Runner] in [Deps], so
// tests drive the whole pipeline against a scripted executor.
//
// Example usage:
//
//	report, err := pipeline.Run(ctx, cfg, pipeline.Deps{Runner: r})
//	if err != nil {
//	    return err
//	}
//	for _, b := range report.Bundles {
//	    fmt.Println(b)
//	}
package pipeline
