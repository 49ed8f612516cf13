// Package resample implements bootstrap and jackknife estimation.
//
// Bootstrap draws samples with replacement from one data set. MultiBootstrap
// does so for several named factors with independent streams, MVBootstrap for
// multivariate observations, and CaseBootstrapSampler for case identifiers
// whose estimator works on whole records, such as the rows of a matrix fed to
// an OLSEstimator. JackKnifeEstimator evaluates a statistic on every
// leave-one-out subset.
//
// Resampling draws come from an rng.Stream, so a run can be replayed exactly by
// resetting the stream:
//
//	b, _ := resample.NewBootstrap(data, resample.WithStream(rng.NewStream(42)))
//	est, _ := b.GenerateSamples(1000, resample.Median)
//	ci, _ := est.PercentileCI(0.95)
//
// Estimators that return the wrong number of values for a draw do not fail the
// run; the draw is dropped and counted by Skipped.
package resample
