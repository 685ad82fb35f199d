package tuning

// OptionSpec describes one USI-exposed tunable: its name, its default and
// clamp range, and where it lives in a Params value. Building the spec
// table from field pointers (rather than a name-to-field switch) keeps the
// 120-odd entries declarative instead of turning SetByName into a wall of
// repeated cases.
type OptionSpec struct {
	Name    string
	Default int
	Min     int
	Max     int
	ptr     *int
}

// SetResult reports what happened when a value was applied through an
// OptionSpec: the value actually stored, whether it had to be clamped into
// range, and the range itself for the caller to report back over USI.
type SetResult struct {
	Applied int
	Clamped bool
	Min     int
	Max     int
}

// Specs returns the option table bound to p's fields. Mutating through the
// returned specs' Set method mutates p directly.
func Specs(p *Params) []OptionSpec {
	return []OptionSpec{
		{"SPSA_IIR_SHALLOW", 1, 0, 8, &p.IIRPriorReductionThresholdShallow},
		{"SPSA_IIR_DEEP", 3, 0, 16, &p.IIRPriorReductionThresholdDeep},
		{"SPSA_IIR_DEPTH_BOUNDARY", 10, 1, 64, &p.IIRDepthBoundary},
		{"SPSA_IIR_EVAL_SUM", 177, 0, 5000, &p.IIREvalSumThreshold},
		{"SPSA_DRAW_JITTER_MASK", 2, 0, 31, &p.DrawJitterMask},
		{"SPSA_DRAW_JITTER_OFFSET", -1, -16, 16, &p.DrawJitterOffset},
		{"SPSA_LMR_DELTA_SCALE", 757, 0, 4096, &p.LMRReductionDeltaScale},
		{"SPSA_LMR_NON_IMPROVING_MULT", 218, 0, 4096, &p.LMRReductionNonImprovingMult},
		{"SPSA_LMR_NON_IMPROVING_DIV", 512, 1, 4096, &p.LMRReductionNonImprovingDiv},
		{"SPSA_LMR_BASE_OFFSET", 1200, -8192, 8192, &p.LMRReductionBaseOffset},
		{"SPSA_LMR_TTPV_ADD", 946, -8192, 8192, &p.LMRTTPVAdd},
		{"SPSA_LMR_STEP16_TTPV_SUB_BASE", 2618, -8192, 8192, &p.LMRStep16TTPVSubBase},
		{"SPSA_LMR_STEP16_TTPV_SUB_PV_NODE", 991, -8192, 8192, &p.LMRStep16TTPVSubPVNode},
		{"SPSA_LMR_STEP16_TTPV_SUB_TT_VALUE", 903, -8192, 8192, &p.LMRStep16TTPVSubTTValue},
		{"SPSA_LMR_STEP16_TTPV_SUB_TT_DEPTH", 978, -8192, 8192, &p.LMRStep16TTPVSubTTDepth},
		{"SPSA_LMR_STEP16_TTPV_SUB_CUT_NODE", 1051, -8192, 8192, &p.LMRStep16TTPVSubCutNode},
		{"SPSA_LMR_STEP16_BASE_ADD", 843, -8192, 8192, &p.LMRStep16BaseAdd},
		{"SPSA_LMR_STEP16_MOVE_COUNT_MUL", 66, -1024, 1024, &p.LMRStep16MoveCountMul},
		{"SPSA_LMR_STEP16_CORRECTION_DIV", 30_450, 1, 1_000_000, &p.LMRStep16CorrectionDiv},
		{"SPSA_LMR_STEP16_CUT_NODE_ADD", 3094, -8192, 8192, &p.LMRStep16CutNodeAdd},
		{"SPSA_LMR_STEP16_CUT_NODE_NO_TT_ADD", 1056, -8192, 8192, &p.LMRStep16CutNodeNoTTAdd},
		{"SPSA_LMR_STEP16_TT_CAPTURE_ADD", 1415, -8192, 8192, &p.LMRStep16TTCaptureAdd},
		{"SPSA_LMR_STEP16_CUTOFF_COUNT_ADD", 1051, -8192, 8192, &p.LMRStep16CutoffCountAdd},
		{"SPSA_LMR_STEP16_CUTOFF_COUNT_ALL_NODE_ADD", 814, -8192, 8192, &p.LMRStep16CutoffCountAllNodeAdd},
		{"SPSA_LMR_STEP16_TT_MOVE_PENALTY", 2018, -8192, 8192, &p.LMRStep16TTMovePenalty},
		{"SPSA_LMR_STEP16_CAPTURE_STAT_SCALE_NUM", 803, 0, 8192, &p.LMRStep16CaptureStatScaleNum},
		{"SPSA_LMR_STEP16_STAT_SCORE_SCALE_NUM", 794, 0, 8192, &p.LMRStep16StatScoreScaleNum},
		{"SPSA_LMR_RESEARCH_DEEPER_BASE", 43, -1024, 1024, &p.LMRResearchDeeperBase},
		{"SPSA_LMR_RESEARCH_DEEPER_DEPTH_MUL", 2, -64, 64, &p.LMRResearchDeeperDepthMul},
		{"SPSA_LMR_RESEARCH_SHALLOWER_THRESHOLD", 9, -1024, 1024, &p.LMRResearchShallowerThreshold},

		{"SPSA_SINGULAR_MIN_DEPTH_BASE", 6, 0, 64, &p.SingularMinDepthBase},
		{"SPSA_SINGULAR_MIN_DEPTH_TT_PV_ADD", 1, 0, 8, &p.SingularMinDepthTTPVAdd},
		{"SPSA_SINGULAR_TT_DEPTH_MARGIN", 3, 0, 16, &p.SingularTTDepthMargin},
		{"SPSA_SINGULAR_BETA_MARGIN_BASE", 56, -4096, 4096, &p.SingularBetaMarginBase},
		{"SPSA_SINGULAR_BETA_MARGIN_TT_PV_NON_PV_ADD", 81, -4096, 4096, &p.SingularBetaMarginTTPVNonPVAdd},
		{"SPSA_SINGULAR_BETA_MARGIN_DIV", 60, 1, 4096, &p.SingularBetaMarginDiv},
		{"SPSA_SINGULAR_DEPTH_DIV", 2, 1, 16, &p.SingularDepthDiv},
		{"SPSA_SINGULAR_DOUBLE_MARGIN_BASE", -4, -4096, 4096, &p.SingularDoubleMarginBase},
		{"SPSA_SINGULAR_DOUBLE_MARGIN_PV_NODE", 198, -4096, 4096, &p.SingularDoubleMarginPVNode},
		{"SPSA_SINGULAR_DOUBLE_MARGIN_NON_TT_CAPTURE", -212, -4096, 4096, &p.SingularDoubleMarginNonTTCapture},
		{"SPSA_SINGULAR_CORR_VAL_ADJ_DIV", 229_958, 1, 1_000_000, &p.SingularCorrValAdjDiv},
		{"SPSA_SINGULAR_DOUBLE_MARGIN_TT_MOVE_HIST_MULT", -921, -4096, 4096, &p.SingularDoubleMarginTTMoveHistMult},
		{"SPSA_SINGULAR_DOUBLE_MARGIN_TT_MOVE_HIST_DIV", 127_649, 1, 1_000_000, &p.SingularDoubleMarginTTMoveHistDiv},
		{"SPSA_SINGULAR_DOUBLE_MARGIN_LATE_PLY_PENALTY", 45, -4096, 4096, &p.SingularDoubleMarginLatePlyPenalty},
		{"SPSA_SINGULAR_TRIPLE_MARGIN_BASE", 76, -4096, 4096, &p.SingularTripleMarginBase},
		{"SPSA_SINGULAR_TRIPLE_MARGIN_PV_NODE", 308, -4096, 4096, &p.SingularTripleMarginPVNode},
		{"SPSA_SINGULAR_TRIPLE_MARGIN_NON_TT_CAPTURE", -250, -4096, 4096, &p.SingularTripleMarginNonTTCapture},
		{"SPSA_SINGULAR_TRIPLE_MARGIN_TT_PV", 92, -4096, 4096, &p.SingularTripleMarginTTPV},
		{"SPSA_SINGULAR_TRIPLE_MARGIN_LATE_PLY_PENALTY", 52, -4096, 4096, &p.SingularTripleMarginLatePlyPenalty},
		{"SPSA_SINGULAR_NEGATIVE_EXTENSION_TT_FAIL_HIGH", -3, -8, 0, &p.SingularNegativeExtensionTTFailHigh},
		{"SPSA_SINGULAR_NEGATIVE_EXTENSION_CUT_NODE", -2, -8, 0, &p.SingularNegativeExtensionCutNode},

		{"SPSA_FUTILITY_MARGIN_BASE", 91, 0, 1024, &p.FutilityMarginBase},
		{"SPSA_FUTILITY_MARGIN_TT_BONUS", 21, 0, 512, &p.FutilityMarginTTBonus},
		{"SPSA_FUTILITY_IMPROVING_SCALE", 2094, 0, 4096, &p.FutilityImprovingScale},
		{"SPSA_FUTILITY_OPP_WORSENING_SCALE", 1324, 0, 4096, &p.FutilityOpponentWorseningScale},
		{"SPSA_FUTILITY_CORRECTION_DIV", 158_105, 1, 1_000_000, &p.FutilityCorrectionDiv},
		{"SPSA_SMALL_PROBCUT_MARGIN", 418, 0, 2048, &p.SmallProbCutMargin},
		{"SPSA_RAZORING_BASE", 514, 0, 4096, &p.RazoringMarginBase},
		{"SPSA_RAZORING_DEPTH2", 294, 0, 4096, &p.RazoringMarginDepth2Coeff},
		{"SPSA_NMP_MARGIN_DEPTH_MULT", 18, 0, 256, &p.NMPMarginDepthMult},
		{"SPSA_NMP_MARGIN_OFFSET", -390, -4096, 4096, &p.NMPMarginOffset},
		{"SPSA_NMP_REDUCTION_BASE", 7, 1, 32, &p.NMPReductionBase},
		{"SPSA_NMP_REDUCTION_DEPTH_DIV", 3, 1, 32, &p.NMPReductionDepthDiv},
		{"SPSA_NMP_VERIFICATION_DEPTH", 16, 1, 128, &p.NMPVerificationDepthThreshold},
		{"SPSA_NMP_MIN_PLY_NUM", 3, 1, 32, &p.NMPMinPlyUpdateNum},
		{"SPSA_NMP_MIN_PLY_DEN", 4, 1, 32, &p.NMPMinPlyUpdateDen},
		{"SPSA_PROBCUT_BETA_MARGIN", 224, 0, 2048, &p.ProbCutBetaMarginBase},
		{"SPSA_PROBCUT_IMPROVING_SUB", 64, 0, 1024, &p.ProbCutBetaImprovingSub},
		{"SPSA_PROBCUT_DYNAMIC_DIV", 306, 1, 4096, &p.ProbCutDynamicReductionDiv},
		{"SPSA_PROBCUT_DEPTH_BASE", 5, 1, 32, &p.ProbCutDepthBase},
		{"SPSA_QS_FUTILITY_BASE", 352, 0, 4096, &p.QSearchFutilityBase},

		{"SPSA_STAT_BONUS_DEPTH_MULT", 121, 0, 2048, &p.StatBonusDepthMult},
		{"SPSA_STAT_BONUS_OFFSET", -77, -4096, 4096, &p.StatBonusOffset},
		{"SPSA_STAT_BONUS_MAX", 1633, 1, 8192, &p.StatBonusMax},
		{"SPSA_STAT_BONUS_TT_BONUS", 375, -4096, 4096, &p.StatBonusTTBonus},
		{"SPSA_STAT_MALUS_DEPTH_MULT", 825, 0, 4096, &p.StatMalusDepthMult},
		{"SPSA_STAT_MALUS_OFFSET", -196, -4096, 4096, &p.StatMalusOffset},
		{"SPSA_STAT_MALUS_MAX", 2159, 1, 8192, &p.StatMalusMax},
		{"SPSA_STAT_MALUS_MOVE_COUNT_MULT", 16, 0, 512, &p.StatMalusMoveCountMult},

		{"SPSA_LOW_PLY_HISTORY_MULTIPLIER", 761, 0, 2048, &p.LowPlyHistoryMultiplier},
		{"SPSA_LOW_PLY_HISTORY_OFFSET", 0, -2048, 2048, &p.LowPlyHistoryOffset},
		{"SPSA_CONT_HISTORY_MULTIPLIER", 955, 0, 2048, &p.ContinuationHistoryMultiplier},
		{"SPSA_CONT_HISTORY_NEAR_PLY_OFFSET", 88, -1024, 1024, &p.ContinuationHistoryNearPlyOffset},
		{"SPSA_CONT_HISTORY_WEIGHT_1", 1157, -4096, 4096, &p.ContinuationHistoryWeight1},
		{"SPSA_CONT_HISTORY_WEIGHT_2", 648, -4096, 4096, &p.ContinuationHistoryWeight2},
		{"SPSA_CONT_HISTORY_WEIGHT_3", 288, -4096, 4096, &p.ContinuationHistoryWeight3},
		{"SPSA_CONT_HISTORY_WEIGHT_4", 576, -4096, 4096, &p.ContinuationHistoryWeight4},
		{"SPSA_CONT_HISTORY_WEIGHT_5", 140, -4096, 4096, &p.ContinuationHistoryWeight5},
		{"SPSA_CONT_HISTORY_WEIGHT_6", 441, -4096, 4096, &p.ContinuationHistoryWeight6},
		{"SPSA_FAIL_HIGH_CONT_BASE_NUM", 1412, -4096, 4096, &p.FailHighContinuationBaseNum},
		{"SPSA_FAIL_HIGH_CONT_NEAR_PLY_OFFSET", 80, -1024, 1024, &p.FailHighContinuationNearPlyOffset},
		{"SPSA_FAIL_HIGH_CONT_WEIGHT_1", 1108, -4096, 4096, &p.FailHighContinuationWeight1},
		{"SPSA_FAIL_HIGH_CONT_WEIGHT_2", 652, -4096, 4096, &p.FailHighContinuationWeight2},
		{"SPSA_FAIL_HIGH_CONT_WEIGHT_3", 273, -4096, 4096, &p.FailHighContinuationWeight3},
		{"SPSA_FAIL_HIGH_CONT_WEIGHT_4", 572, -4096, 4096, &p.FailHighContinuationWeight4},
		{"SPSA_FAIL_HIGH_CONT_WEIGHT_5", 126, -4096, 4096, &p.FailHighContinuationWeight5},
		{"SPSA_FAIL_HIGH_CONT_WEIGHT_6", 449, -4096, 4096, &p.FailHighContinuationWeight6},
		{"SPSA_PAWN_HISTORY_POS_MULTIPLIER", 850, 0, 2048, &p.PawnHistoryPosMultiplier},
		{"SPSA_PAWN_HISTORY_NEG_MULTIPLIER", 550, 0, 2048, &p.PawnHistoryNegMultiplier},

		{"SPSA_UPDATE_ALL_QUIET_BONUS_SCALE_NUM", 881, 0, 4096, &p.UpdateAllStatsQuietBonusScaleNum},
		{"SPSA_UPDATE_ALL_QUIET_MALUS_SCALE_NUM", 1083, 0, 4096, &p.UpdateAllStatsQuietMalusScaleNum},
		{"SPSA_UPDATE_ALL_CAPTURE_BONUS_SCALE_NUM", 1482, 0, 4096, &p.UpdateAllStatsCaptureBonusScaleNum},
		{"SPSA_UPDATE_ALL_CAPTURE_MALUS_SCALE_NUM", 1397, 0, 4096, &p.UpdateAllStatsCaptureMalusScaleNum},
		{"SPSA_UPDATE_ALL_EARLY_REFUTE_PENALTY_SCALE_NUM", 614, 0, 4096, &p.UpdateAllStatsEarlyRefutationPenaltyScaleNum},

		{"SPSA_PRIOR_QUIET_CM_BONUS_SCALE_BASE", -228, -4096, 4096, &p.PriorQuietCountermoveBonusScaleBase},
		{"SPSA_PRIOR_QUIET_CM_PARENT_STAT_DIV", 104, 1, 4096, &p.PriorQuietCountermoveParentStatDiv},
		{"SPSA_PRIOR_QUIET_CM_DEPTH_MUL", 63, -1024, 1024, &p.PriorQuietCountermoveDepthMul},
		{"SPSA_PRIOR_QUIET_CM_DEPTH_CAP", 508, 0, 8192, &p.PriorQuietCountermoveDepthCap},
		{"SPSA_PRIOR_QUIET_CM_MOVE_COUNT_BONUS", 184, -4096, 4096, &p.PriorQuietCountermoveMoveCountBonus},
		{"SPSA_PRIOR_QUIET_CM_EVAL_BONUS", 143, -4096, 4096, &p.PriorQuietCountermoveEvalBonus},
		{"SPSA_PRIOR_QUIET_CM_EVAL_MARGIN", 92, 0, 4096, &p.PriorQuietCountermoveEvalMargin},
		{"SPSA_PRIOR_QUIET_CM_PARENT_EVAL_BONUS", 149, -4096, 4096, &p.PriorQuietCountermoveParentEvalBonus},
		{"SPSA_PRIOR_QUIET_CM_PARENT_EVAL_MARGIN", 70, 0, 4096, &p.PriorQuietCountermoveParentEvalMargin},
		{"SPSA_PRIOR_QUIET_CM_SCALED_DEPTH_MUL", 144, -4096, 4096, &p.PriorQuietCountermoveScaledDepthMul},
		{"SPSA_PRIOR_QUIET_CM_SCALED_OFFSET", -92, -4096, 4096, &p.PriorQuietCountermoveScaledOffset},
		{"SPSA_PRIOR_QUIET_CM_SCALED_CAP", 1365, 0, 32768, &p.PriorQuietCountermoveScaledCap},
		{"SPSA_PRIOR_QUIET_CM_CONT_SCALE_NUM", 400, -32768, 32768, &p.PriorQuietCountermoveContScaleNum},
		{"SPSA_PRIOR_QUIET_CM_MAIN_SCALE_NUM", 220, -32768, 32768, &p.PriorQuietCountermoveMainScaleNum},
		{"SPSA_PRIOR_QUIET_CM_PAWN_SCALE_NUM", 1164, -32768, 32768, &p.PriorQuietCountermovePawnScaleNum},

		{"SPSA_TT_MOVE_BONUS", 811, -8192, 8192, &p.TTMoveHistoryBonus},
		{"SPSA_TT_MOVE_MALUS", -848, -8192, 8192, &p.TTMoveHistoryMalus},
		{"SPSA_PRIOR_CAPTURE_CM_BONUS", 964, -8192, 8192, &p.PriorCaptureCountermoveBonus},
	}
}

// Value returns the option's current live value from the Params it was
// built against.
func (s OptionSpec) Value() int {
	return *s.ptr
}

// Set clamps value into [s.Min, s.Max], stores it, and reports what
// happened.
func (s OptionSpec) Set(value int) SetResult {
	applied := clamp(value, s.Min, s.Max)
	*s.ptr = applied
	return SetResult{Applied: applied, Clamped: applied != value, Min: s.Min, Max: s.Max}
}

// SetByName applies value to the named option against p, reporting ok=false
// for an unrecognized name.
func SetByName(p *Params, name string, value int) (SetResult, bool) {
	for _, s := range Specs(p) {
		if s.Name == name {
			return s.Set(value), true
		}
	}
	return SetResult{}, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
