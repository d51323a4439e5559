// Package recovery recovers ECDSA private keys from signatures whose nonces
// are affinely related, k2 = a·k1 + b (mod n).
//
// Two such signatures determine the private key:
//
//	d = (a·s2·z1 - s1·z2 + b·s1·s2) / (r2·s1 - a·r1·s2)  (mod n)
//
// Reused nonces (a = 1, b = 0), counters and fixed steps all fall into this
// family. The attack is described in "Breaking ECDSA with Two Affinely
// Related Nonces" (arXiv:2504.13737).
//
// # Quick Start
//
//	client := recovery.NewClient()
//
//	result, err := client.RecoverKey(ctx, "signatures.json", "03...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Recovered key: %s\n", result.PrivateKey.Text(16))
//
// Signatures over other curves are handled by setting the base point with
// WithGenerator. Without a public key, a candidate is accepted when it
// reproduces the r value of its first signature.
//
// # Customization
//
//	strategy := recovery.NewSmartBruteForceStrategy().
//	    WithRangeConfig(recovery.RangeConfig{
//	        Schedule: []recovery.SearchRange{
//	            {ARange: [2]int{1, 10}, BRange: [2]int{-50000, 50000}, Name: "wide"},
//	        },
//	        MaxPairs:   100,
//	        NumWorkers: 16,
//	    }).
//	    WithPatternConfig(recovery.PatternConfig{
//	        CustomPatterns: []recovery.Pattern{
//	            {A: big.NewInt(1), B: big.NewInt(12345), Name: "custom_step", Priority: 1},
//	        },
//	        IncludeCommonPatterns: true,
//	    }).
//	    WithMetrics(recovery.NewMetrics(prometheus.DefaultRegisterer))
//
//	client := recovery.NewClient().WithStrategy(strategy)
//
// Any type implementing BruteForceStrategy can be plugged in the same way.
package recovery
