// Package catalog exposes the static option lists the scan launcher offers
// to its frontend, plus discovery of locally configured AWS profiles.
package catalog

// Service is a scannable AWS service offered for selection.
type Service struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Region is a selectable AWS region.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Framework is a compliance framework the scanner can evaluate against.
type Framework struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var services = []Service{
	{ID: "apigateway", Name: "API Gateway", Category: "Networking"},
	{ID: "cloudfront", Name: "CloudFront", Category: "Networking"},
	{ID: "cloudtrail", Name: "CloudTrail", Category: "Security"},
	{ID: "cloudwatch", Name: "CloudWatch", Category: "Management"},
	{ID: "dynamodb", Name: "DynamoDB", Category: "Database"},
	{ID: "ec2", Name: "EC2 (Compute)", Category: "Compute"},
	{ID: "efs", Name: "EFS", Category: "Storage"},
	{ID: "eks", Name: "EKS", Category: "Containers"},
	{ID: "elasticache", Name: "ElastiCache", Category: "Database"},
	{ID: "guardduty", Name: "GuardDuty", Category: "Security"},
	{ID: "iam", Name: "IAM", Category: "Security"},
	{ID: "kms", Name: "KMS", Category: "Security"},
	{ID: "lambda", Name: "Lambda", Category: "Compute"},
	{ID: "opensearch", Name: "OpenSearch", Category: "Analytics"},
	{ID: "rds", Name: "RDS", Category: "Database"},
	{ID: "redshift", Name: "Redshift", Category: "Analytics"},
	{ID: "s3", Name: "S3", Category: "Storage"},
	{ID: "sqs", Name: "SQS", Category: "Application Integration"},
}

var regions = []Region{
	{ID: "us-east-1", Name: "US East (N. Virginia)"},
	{ID: "us-east-2", Name: "US East (Ohio)"},
	{ID: "us-west-1", Name: "US West (N. California)"},
	{ID: "us-west-2", Name: "US West (Oregon)"},
	{ID: "ap-southeast-1", Name: "Asia Pacific (Singapore)"},
	{ID: "ap-southeast-2", Name: "Asia Pacific (Sydney)"},
	{ID: "ap-northeast-1", Name: "Asia Pacific (Tokyo)"},
	{ID: "ap-northeast-2", Name: "Asia Pacific (Seoul)"},
	{ID: "ap-northeast-3", Name: "Asia Pacific (Osaka)"},
	{ID: "ap-south-1", Name: "Asia Pacific (Mumbai)"},
	{ID: "eu-west-1", Name: "Europe (Ireland)"},
	{ID: "eu-west-2", Name: "Europe (London)"},
	{ID: "eu-west-3", Name: "Europe (Paris)"},
	{ID: "eu-central-1", Name: "Europe (Frankfurt)"},
	{ID: "eu-north-1", Name: "Europe (Stockholm)"},
	{ID: "sa-east-1", Name: "South America (São Paulo)"},
	{ID: "ca-central-1", Name: "Canada (Central)"},
}

var frameworks = []Framework{
	{ID: "WAFS", Name: "AWS Well-Architected Framework - Security Pillar"},
	{ID: "CIS", Name: "CIS AWS Foundations Benchmark"},
	{ID: "FTR", Name: "AWS Foundational Technical Review"},
	{ID: "NIST", Name: "NIST Cybersecurity Framework"},
	{ID: "SOC2", Name: "SOC 2 Compliance"},
	{ID: "SSB", Name: "AWS Startup Security Baseline"},
}

// Services returns the selectable service catalog.
func Services() []Service {
	return append([]Service(nil), services...)
}

// Regions returns the selectable region catalog.
func Regions() []Region {
	return append([]Region(nil), regions...)
}

// Frameworks returns the selectable compliance framework catalog.
func Frameworks() []Framework {
	return append([]Framework(nil), frameworks...)
}
