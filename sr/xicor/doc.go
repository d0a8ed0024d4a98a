// Package xicor implements the two correlation helpers the Engine Facade
// uses to turn a raw dataset column into a feature-selection weight: Xi
// (the Chatterjee rank correlation coefficient) and Pearson's r.
package xicor
