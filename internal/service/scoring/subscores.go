package scoring

import (
	"math"
	"strings"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
)

const (
	breakdownTitleWeight        = "title_weight"
	breakdownEmailValidated     = "email_validated"
	breakdownDepartmentBonus    = "department_bonus"
	breakdownCompanySizeBonus   = "company_size_bonus"
	breakdownIndustryMatch      = "industry_match"
	breakdownRevenueTier        = "revenue_tier"
	breakdownDataQuality        = "data_quality"
	breakdownHighEngagement     = "high_engagement"
	breakdownModerateEngagement = "moderate_engagement"
	breakdownSomeEngagement     = "some_engagement"
	breakdownBehavioralBase     = "behavioral_base"
	breakdownEngagementLevel    = "engagement_level"
	breakdownEngagementBase     = "engagement_base"
)

var seniorityWeights = map[string]float64{
	"c-level": 30,
	"vp":      25,
	"director": 20,
	"manager": 15,
	"senior":  10,
	"mid":     5,
	"junior":  0,
}

var relevantDepartments = map[string]bool{
	"technology":  true,
	"engineering": true,
	"product":     true,
	"sales":       true,
	"marketing":   true,
}

var companySizeWeights = map[string]float64{
	"1000-5000": 20,
	"500-1000":  18,
	"100-500":   15,
	"50-100":    12,
	"10-50":     10,
	"1-10":      5,
}

var targetIndustries = map[string]bool{
	"technology": true,
	"finance":    true,
	"healthcare": true,
	"education":  true,
}

// demographicScore rates the individual behind the lead: seniority, title
// keywords, email validity, and department relevance on top of a base of 50.
func demographicScore(profile *entity.LeadProfile, breakdown map[string]float64) float64 {
	score := 50.0

	var title, seniority string
	emailValidated := false
	if profile.Contact != nil {
		title = deref(profile.Contact.JobTitle)
		seniority = deref(profile.Contact.SeniorityLevel)
		emailValidated = profile.Contact.EmailValidated
	}

	weight := titleWeight(title, seniority)
	breakdown[breakdownTitleWeight] = weight
	score += weight

	if emailValidated {
		score += 10
		breakdown[breakdownEmailValidated] = 10
	}

	if profile.Contact != nil && relevantDepartments[strings.ToLower(deref(profile.Contact.Department))] {
		score += 10
		breakdown[breakdownDepartmentBonus] = 10
	}

	return clamp(score)
}

// titleWeight combines a seniority lookup with title keyword matching, capped
// at 30 in total. An unrecognized but non-empty seniority still counts for 10.
func titleWeight(title, seniority string) float64 {
	if title == "" && seniority == "" {
		return 0
	}

	score := 0.0
	if seniority != "" {
		if weight, ok := seniorityWeights[strings.ToLower(seniority)]; ok {
			score += weight
		} else {
			score += 10
		}
	}

	lowered := strings.ToLower(title)
	switch {
	case strings.Contains(lowered, "cto") || strings.Contains(lowered, "chief"):
		score += 15
	case strings.Contains(lowered, "vp") || strings.Contains(lowered, "vice president"):
		score += 12
	case strings.Contains(lowered, "director") || strings.Contains(lowered, "head"):
		score += 10
	case strings.Contains(lowered, "manager"):
		score += 5
	}

	return math.Min(30, score)
}

// firmographicScore rates the lead's organization: size, industry, revenue
// tier, and enrichment data quality on top of a base of 40.
func firmographicScore(profile *entity.LeadProfile, breakdown map[string]float64) float64 {
	score := 40.0

	var size, industry string
	var revenue, quality *float64
	if profile.Organization != nil {
		size = deref(profile.Organization.CompanySize)
		industry = deref(profile.Organization.Industry)
		revenue = profile.Organization.AnnualRevenue
		quality = profile.Organization.DataQualityScore
	}

	sizeBonus := companySizeWeights[size]
	breakdown[breakdownCompanySizeBonus] = sizeBonus
	score += sizeBonus

	if targetIndustries[strings.ToLower(industry)] {
		score += 15
		breakdown[breakdownIndustryMatch] = 15
	}

	if revenue != nil {
		switch {
		case *revenue > 100_000_000:
			score += 15
			breakdown[breakdownRevenueTier] = 15
		case *revenue > 50_000_000:
			score += 10
			breakdown[breakdownRevenueTier] = 10
		case *revenue > 10_000_000:
			score += 5
			breakdown[breakdownRevenueTier] = 5
		}
	}

	if quality != nil && *quality != 0 {
		qualityBonus := math.Round(*quality * 10)
		score += qualityBonus
		breakdown[breakdownDataQuality] = qualityBonus
	}

	return clamp(score)
}

// behavioralScore rates interaction depth on top of a base of 50. Until the
// engagement aggregation pipeline lands, the count is inferred from whether a
// prior snapshot recorded any engagement at all.
func behavioralScore(profile *entity.LeadProfile, breakdown map[string]float64) float64 {
	score := 50.0

	engagementCount := 0
	if profile.CurrentEngagementScore != nil {
		engagementCount = 5
	}

	switch {
	case engagementCount > 10:
		score += 25
		breakdown[breakdownHighEngagement] = 25
	case engagementCount > 5:
		score += 15
		breakdown[breakdownModerateEngagement] = 15
	case engagementCount > 0:
		score += 10
		breakdown[breakdownSomeEngagement] = 10
	}

	breakdown[breakdownBehavioralBase] = 50

	return clamp(score)
}

// engagementScore seeds every snapshot at 30. The value is then raised in
// place by engagement webhooks rather than recomputed here.
func engagementScore(_ *entity.LeadProfile, breakdown map[string]float64) float64 {
	score := 30.0
	breakdown[breakdownEngagementLevel] = 30
	breakdown[breakdownEngagementBase] = 1
	return clamp(score)
}

// mlScore simulates a model prediction from the normalized sub-scores: a 0.5
// baseline nudged up for strong signals and down for weak ones.
func mlScore(demographic, firmographic, behavioral, engagement float64) float64 {
	prediction := 0.5

	if demographic/100 > 0.7 {
		prediction += 0.1
	}
	if firmographic/100 > 0.7 {
		prediction += 0.15
	}
	if behavioral/100 > 0.7 {
		prediction += 0.1
	}
	if engagement/100 > 0.7 {
		prediction += 0.15
	}

	if demographic/100 < 0.3 {
		prediction -= 0.1
	}
	if firmographic/100 < 0.3 {
		prediction -= 0.1
	}

	return math.Round(math.Max(0, math.Min(100, prediction*100)))
}

func clamp(score float64) float64 {
	return math.Min(100, math.Max(0, score))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
