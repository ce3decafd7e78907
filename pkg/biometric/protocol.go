// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package biometric

import (
	"fmt"
	"strings"
)

// Protocol names which comparison population is the positive class.
//
// The two protocols are not interchangeable: the same distances produce
// different tuples under each, and a DET tuple must never be read as ROC.
type Protocol string

const (
	// ProtocolDET treats morph impersonation attempts as positives.
	//
	//	morph identity mean, rejected -> TP    accepted -> FN
	//	still distance,      accepted -> TN    rejected -> FP
	ProtocolDET Protocol = "det"

	// ProtocolROC treats genuine still pairs as positives.
	//
	//	still distance,           accepted -> TP    rejected -> FN
	//	morph candidate distance, accepted -> FP    rejected -> TN
	ProtocolROC Protocol = "roc"
)

// ParseProtocol converts a name to a Protocol.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(strings.TrimSpace(s))); p {
	case ProtocolDET, ProtocolROC:
		return p, nil
	default:
		return "", fmt.Errorf("unknown protocol %q (must be 'det' or 'roc')", s)
	}
}

// Axes returns the curve axis labels for the protocol.
func (p Protocol) Axes() (x, y string) {
	if p == ProtocolROC {
		return "FPR", "TPR"
	}
	return "APCER", "BPCER"
}

// Rates returns the curve coordinates of one tuple: (APCER, BPCER) for DET,
// (FPR, TPR) for ROC.
func (p Protocol) Rates(c Confusion, threshold float64) (x, y float64, err error) {
	switch p {
	case ProtocolDET:
		if x, err = c.APCER(threshold); err != nil {
			return 0, 0, err
		}
		if y, err = c.BPCER(threshold); err != nil {
			return 0, 0, err
		}
	case ProtocolROC:
		if x, err = c.FPR(threshold); err != nil {
			return 0, 0, err
		}
		if y, err = c.TPR(threshold); err != nil {
			return 0, 0, err
		}
	default:
		return 0, 0, fmt.Errorf("unknown protocol %q", p)
	}
	return x, y, nil
}

// tally maps accept/reject counts of both populations onto a tuple.
func (p Protocol) tally(morphAccepted, morphRejected, stillAccepted, stillRejected int) Confusion {
	if p == ProtocolROC {
		return Confusion{
			TP: stillAccepted,
			FN: stillRejected,
			FP: morphAccepted,
			TN: morphRejected,
		}
	}
	return Confusion{
		TP: morphRejected,
		FN: morphAccepted,
		TN: stillAccepted,
		FP: stillRejected,
	}
}
