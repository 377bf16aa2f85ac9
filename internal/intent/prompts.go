package intent

// BlockedTopics documents the categories the safety verdict is expected to
// flag. The verdict itself comes from the model per call; this list exists
// for prompt design and tests, not as an authoritative local blocklist.
var BlockedTopics = []string{
	"medical_emergency", "mental_health_crisis", "self_harm",
	"violence", "legal_advice", "financial_distress",
	"hate_speech", "explicit_content", "dangerous_activities",
}

const patternAnalysisPrompt = `You are a conversation pattern analyzer. Analyze the FULL conversation history for usage patterns.

CONVERSATION HISTORY:
%s

ANALYSIS TASKS:

1. **Topic Clustering**: Group messages by topic. Identify if the user keeps asking about the same subject.
   Examples: calculus equations, coding questions, recipe ideas, travel planning

2. **Query Type Detection**: Is this a "homework help" pattern?
   - User sending equations/problems one after another
   - User asking "solve this", "what's the answer to", "help with"
   - Repetitive Q&A without deeper learning

3. **Usage Pattern**: What pattern best describes this session?
   - BROWSING: Just exploring, casual questions
   - LEARNING: Genuine learning, asking follow-ups to understand
   - GRINDING: Repeated similar questions, treating the assistant as a homework solver
   - SHOPPING: Researching products/services
   - URGENT: Time-sensitive need, exam prep, deadline

4. **Topic Repeat Count**: How many questions are about the SAME specific topic?
   (e.g., "calculus integrals" = 3 questions, "python errors" = 2 questions)

5. **Commercial Opportunity**: Is there a natural opportunity to recommend:
   - A learning tool/course (if GRINDING or LEARNING pattern)
   - A product (if SHOPPING pattern)
   - A service (if URGENT pattern)

6. **Safety Check**: Is this topic SAFE for ads?
   - UNSAFE: Medical/Mental Health crisis, Legal trouble, Violence, Self-Harm, Financial Ruin.
   - SAFE: Everything else.

Respond with ONLY valid JSON:
{
    "primary_topic": "the main topic being discussed",
    "topic_repeat_count": number of questions on this topic,
    "usage_pattern": "BROWSING|LEARNING|GRINDING|SHOPPING|URGENT",
    "is_homework_pattern": true/false,
    "detected_subjects": ["subject1", "subject2"],
    "commercial_opportunity": "description of potential recommendation or null",
    "propensity_score": 0-100,
    "is_safe_for_ads": true/false,
    "safety_reason": "why unsafe (e.g., 'medical emergency') or null",
    "reasoning": "brief explanation"
}`

const singleMessagePrompt = `Quickly classify this single message for basic intent AND safety.

MESSAGE: %s

SAFETY RULES (CRITICAL):
- UNSAFE: Medical emergencies, injuries, bleeding, mental health, suicide, legal disputes, lawsuits, violence.
- SAFE: Casual shopping, homework help, innocent questions.
- IF UNSAFE -> is_safe_for_ads = false.

Respond with ONLY valid JSON:
{
    "intent_bucket": "educational|commercial|navigational|transactional",
    "detected_entities": ["entity1", "entity2"],
    "is_question": true/false,
    "is_equation_or_problem": true/false,
    "is_safe_for_ads": true/false,
    "safety_reason": "reason if unsafe (e.g. 'medical injury')"
}`

const multimodalAnalysisPrompt = `Analyze this image and message for commercial intent.
The user has uploaded an image (e.g., a broken product, a specific item they want).

MESSAGE: %s

ANALYSIS TASKS:
1. **Visual Identification**: What exact product/brand/item is in the image? (e.g., "Delta Faucet", "Nike Air Max")
2. **Issue Detection**: Is something broken or wrong? (e.g., "Leaky handle", "Torn sole")
3. **Intent Classification**:
   - COMMERCIAL: Buying a replacement or specific part.
   - EDUCATIONAL: Learning how to fix it.
4. **Commercial Opportunity**: What specifically should be recommended? (e.g., "Delta Faucet Repair Kit", "Running Shoes")

Respond with ONLY valid JSON:
{
    "intent_bucket": "commercial|educational|transactional",
    "detected_entities": ["Visual Entity 1", "Visual Entity 2", "Text Entity"],
    "commercial_opportunity": "Specific Product/Service to recommend",
    "propensity_score": 85-100 (High for visual search),
    "is_safe_for_ads": true,
    "reasoning": "Visual analysis found X..."
}`
